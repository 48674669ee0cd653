package main

import (
	"context"
	"os"

	"github.com/Mictilt/qrforge"
	"github.com/Mictilt/qrforge/style"
	"github.com/Mictilt/qrforge/writer/standard"
)

func main() {
	m, err := qrforge.YeqownEncoder{}.Encode(context.Background(), "https://github.com/Mictilt/qrforge", qrforge.ECLevelQ)
	if err != nil {
		panic(err)
	}

	// dots fading from blue to red, leaf shaped eyes
	s := style.Resolve(style.Config{
		ModuleShape: "dots",
		EyeShape:    "leaf",
		Gradient:    &style.GradientConfig{From: "#0066cc", To: "#cc0000"},
	})

	a, err := standard.Render(m, s, 600)
	if err != nil {
		panic(err)
	}
	if err = os.WriteFile("gradient-qr.png", a.Bytes(), 0o644); err != nil {
		panic(err)
	}

	// the same code on a transparent background, previewed over a checkerboard
	s = style.Resolve(style.Config{ModuleShape: "diamond", EyeShape: "circle", Background: "transparent"})
	a, err = standard.Render(m, s, 600, standard.WithPreview())
	if err != nil {
		panic(err)
	}
	if err = os.WriteFile("transparent-preview-qr.png", a.Bytes(), 0o644); err != nil {
		panic(err)
	}

	println("QR code with gradient saved as 'gradient-qr.png'")
	println("transparent preview saved as 'transparent-preview-qr.png'")
}
