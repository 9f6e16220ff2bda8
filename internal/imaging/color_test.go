package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestDominantColor_SolidColors(t *testing.T) {
	tests := []struct {
		name     string
		c        color.RGBA
		wantHex  string
		wantName string
	}{
		{"red", color.RGBA{255, 0, 0, 255}, "#f00000", "red"},
		{"yellow", color.RGBA{255, 255, 0, 255}, "#f0f000", "yellow"},
		{"white", color.RGBA{255, 255, 255, 255}, "#f0f0f0", "white"},
		{"black", color.RGBA{0, 0, 0, 255}, "#000000", "black"},
		{"gray", color.RGBA{128, 128, 128, 255}, "#808080", "gray"},
		{"blue", color.RGBA{0, 0, 255, 255}, "#0000f0", "blue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(20, 20, tt.c)

			got, err := DominantColor(img)
			if err != nil {
				t.Fatalf("DominantColor failed: %v", err)
			}
			if got.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", got.Hex, tt.wantHex)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name: got %s, want %s", got.Name, tt.wantName)
			}
			if got.Percentage != 100 {
				t.Errorf("Percentage: got %.1f, want 100", got.Percentage)
			}
		})
	}
}

func TestDominantColor_Majority(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 7 {
				img.Set(x, y, color.RGBA{255, 255, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}

	got, err := DominantColor(img)
	if err != nil {
		t.Fatalf("DominantColor failed: %v", err)
	}
	if got.Name != "yellow" {
		t.Errorf("Name: got %s, want yellow", got.Name)
	}
	if got.Percentage != 70 {
		t.Errorf("Percentage: got %.1f, want 70", got.Percentage)
	}
}

func TestDominantColor_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := DominantColor(img); err == nil {
		t.Error("DominantColor should fail for an empty image")
	}
}

func TestColorName(t *testing.T) {
	tests := []struct {
		h, s, l float64
		want    string
	}{
		{0, 1, 0.5, "red"},
		{350, 1, 0.5, "red"},
		{30, 1, 0.5, "orange"},
		{60, 1, 0.5, "yellow"},
		{120, 1, 0.5, "green"},
		{220, 1, 0.5, "blue"},
		{290, 1, 0.5, "purple"},
		{0, 0, 0.5, "gray"},
		{0, 0, 0.1, "black"},
		{0, 0, 0.95, "white"},
	}

	for _, tt := range tests {
		if got := colorName(tt.h, tt.s, tt.l); got != tt.want {
			t.Errorf("colorName(%.0f, %.2f, %.2f) = %s, want %s", tt.h, tt.s, tt.l, got, tt.want)
		}
	}
}
