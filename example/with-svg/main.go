package main

import (
	"context"
	"os"

	"github.com/Mictilt/qrforge"
	"github.com/Mictilt/qrforge/style"
	"github.com/Mictilt/qrforge/writer/standard"
)

func main() {
	m, err := qrforge.YeqownEncoder{}.Encode(context.Background(), "https://github.com/Mictilt/qrforge", qrforge.ECLevelH)
	if err != nil {
		panic(err)
	}

	// rounded modules with a circular logo in the middle
	s := style.Resolve(style.Config{
		ModuleShape:     "rounded",
		EyeShape:        "rounded",
		Foreground:      "#1d3557",
		Logo:            &style.LogoConfig{Shape: "circle", SizePercent: 22},
		ErrorCorrection: "H",
	})

	opts := []standard.ImageOption{standard.WithFormat(standard.FormatSVG)}
	if len(os.Args) > 1 {
		opts = append(opts, standard.WithLogoImageFilePNG(os.Args[1]))
	}

	a, err := standard.Render(m, s, 640, opts...)
	if err != nil {
		panic(err)
	}

	if err = os.WriteFile("./qrcode.svg", a.Bytes(), 0o644); err != nil {
		panic(err)
	}
	println("SVG saved as 'qrcode.svg'")
}
