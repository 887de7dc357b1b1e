package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itohio/badgelab/pkg/access"
	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/hal"
	"github.com/itohio/badgelab/pkg/link"
	"github.com/itohio/badgelab/pkg/reader"
)

// detectTimeout bounds a single tag detection attempt.
const detectTimeout = 500 * time.Millisecond

func main() {
	var (
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		deviceFlag    = flag.String("d", "", "PN532 serial device override (e.g., /dev/ttyUSB0)")
		broadcastFlag = flag.String("broadcast", "", "UDP broadcast address override (e.g., 192.168.1.255:4210)")
		gpioFlag      = flag.Bool("gpio", false, "Drive the RGB LED from host GPIO pins")
		hashFlag      = flag.String("hash", "", "Print an access list entry with the bcrypt hash of UID and exit")
	)
	flag.Parse()

	if *hashFlag != "" {
		if err := printHashEntry(*hashFlag); err != nil {
			log.Fatalf("Failed to hash UID: %v", err)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *deviceFlag != "" {
		cfg.Reader.Device = *deviceFlag
	}
	if *broadcastFlag != "" {
		cfg.Link.BroadcastAddr = *broadcastFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	led, err := openRGB(cfg.GPIO, *gpioFlag)
	if err != nil {
		log.Fatalf("Failed to open RGB LED: %v", err)
	}

	src, err := waitForReader(ctx, cfg.Reader.Device)
	if err != nil {
		log.Fatalf("PN532 not available: %v", err)
	}
	defer src.Close()

	broadcaster, err := link.NewBroadcaster(cfg.Link.BroadcastAddr)
	if err != nil {
		log.Fatalf("Failed to open badge link: %v", err)
	}
	defer broadcaster.Close()

	list := cfg.Access.List()
	if list.Len() == 0 {
		log.Println("Access list is empty, every badge is denied")
	}

	r := reader.New(src, list, broadcaster, reader.NewLEDFeedback(led), cfg.Reader)
	r.OnScan(func(s reader.Scan) {
		log.Printf("Broadcast %s (%s) to %s", s.UID, s.Level, cfg.Link.BroadcastAddr)
	})

	log.Println("Waiting for an NFC tag...")
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Reader stopped: %v", err)
	}
	log.Println("Reader stopped")
}

// printHashEntry prints a YAML access list entry for uid.
func printHashEntry(uid string) error {
	hash, err := access.HashUID(uid)
	if err != nil {
		return err
	}
	fmt.Printf("- uid_hash: %q\n  level: granted\n", hash)
	return nil
}

// openRGB opens the GPIO RGB LED when useGPIO is set, otherwise colors are
// logged.
func openRGB(cfg config.GPIOConfig, useGPIO bool) (reader.RGBLED, error) {
	if !useGPIO {
		return &hal.LogRGB{}, nil
	}
	return hal.OpenRGB(cfg.Red, cfg.Green, cfg.Blue)
}
