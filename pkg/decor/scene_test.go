package decor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScene_Next(t *testing.T) {
	assert.Equal(t, Steve, Logo.Next())
	assert.Equal(t, Logo, Steve.Next())
	assert.Equal(t, "logo", Logo.String())
	assert.Equal(t, "steve", Steve.String())
}

func TestRender_Logo(t *testing.T) {
	fb := NewFramebuffer(Width, Height)
	Render(fb, Logo)

	assert.Equal(t, Background.RGB565(), fb.Pixel(0, 0))
	assert.Equal(t, DarkBlue.RGB565(), fb.Pixel(logoX, logoY), "shield outline")
	assert.Equal(t, SkyBlue.RGB565(), fb.Pixel(logoX+5, logoY+5), "sky")
	assert.Equal(t, Brown.RGB565(), fb.Pixel(logoX+60, logoY+65), "trunk")
	assert.Equal(t, AppleRed.RGB565(), fb.Pixel(logoX+60, logoY+35), "apple")
	assert.Equal(t, HillLight.RGB565(), fb.Pixel(logoX+30, logoY+140), "hill")

	text := 0
	for y := logoY + 30; y < logoY+65; y++ {
		for x := logoX + 140; x < Width; x++ {
			if fb.Pixel(x, y) == TextGrey.RGB565() {
				text++
			}
		}
	}
	assert.Positive(t, text, "caption is drawn")
}

func TestRender_Steve(t *testing.T) {
	fb := NewFramebuffer(Width, Height)
	Render(fb, Steve)

	block := func(col, row int) uint16 {
		return fb.Pixel(steveX+col*steveScale+steveScale/2, steveY+row*steveScale+steveScale/2)
	}

	assert.Equal(t, Background.RGB565(), fb.Pixel(0, 0))
	assert.Equal(t, Hair.RGB565(), block(3, 0))
	assert.Equal(t, Hair.RGB565(), block(0, 3))
	assert.Equal(t, Skin.RGB565(), block(3, 3))
	assert.Equal(t, Eye.RGB565(), block(1, 4))
	assert.Equal(t, White.RGB565(), block(2, 4))
	assert.Equal(t, White.RGB565(), block(5, 4))
	assert.Equal(t, Eye.RGB565(), block(6, 4))
	assert.Equal(t, Mouth.RGB565(), block(3, 5))
	assert.Equal(t, Mouth.RGB565(), block(2, 6))
	assert.Equal(t, Skin.RGB565(), block(3, 7))
}

func TestRender_ReplacesPreviousScene(t *testing.T) {
	fb := NewFramebuffer(Width, Height)
	Render(fb, Steve)
	Render(fb, Logo)

	assert.Equal(t, Background.RGB565(), fb.Pixel(steveX+7*steveScale+1, steveY+7*steveScale+1))
}
