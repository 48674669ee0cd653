package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/Mictilt/qrforge"
	"github.com/Mictilt/qrforge/batch"
	"github.com/Mictilt/qrforge/content"
	"github.com/Mictilt/qrforge/style"
	"github.com/Mictilt/qrforge/validate"
	"github.com/Mictilt/qrforge/writer/standard"
	"github.com/Mictilt/qrforge/writer/standard/imgkit"
)

var logger = logrus.New()

func main() {
	app := &cli.App{
		Name:  "qrforge",
		Usage: "render styled QR codes and check that they still scan",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logger.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			scanCommand(),
			batchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.WithError(err).Error("qrforge failed")
		os.Exit(1)
	}
}

func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "style", Usage: "JSON style file, other style flags override it"},
		&cli.StringFlag{Name: "module", Usage: "module shape: square, rounded, dots, diamond"},
		&cli.StringFlag{Name: "eye", Usage: "finder eye shape: square, rounded, circle, leaf"},
		&cli.StringFlag{Name: "fg", Usage: "foreground colour, #rrggbb"},
		&cli.StringFlag{Name: "bg", Usage: "background colour, #rrggbb or transparent"},
		&cli.StringFlag{Name: "gradient", Usage: "gradient stops as #from,#to"},
		&cli.StringFlag{Name: "ec", Usage: "error correction level: L, M, Q, H"},
		&cli.StringFlag{Name: "logo", Usage: "PNG or JPEG logo image"},
		&cli.StringFlag{Name: "logo-shape", Value: "square", Usage: "square or circle"},
		&cli.StringFlag{Name: "logo-position", Value: "center", Usage: "center, top-left, top-right, bottom-left, all-corners"},
		&cli.IntFlag{Name: "logo-size", Usage: "logo edge in percent of the canvas (10-40)"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "png", Usage: "png, jpeg or svg"},
		&cli.IntFlag{Name: "size", Value: 512, Usage: "canvas edge in pixels"},
		&cli.StringFlag{Name: "encoder", Value: "yeqown", Usage: "yeqown, skip2, boombuler or rsc"},
	}
}

func generateCommand() *cli.Command {
	flags := append(renderFlags(),
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, defaults to qrcode.<ext>"},
		&cli.BoolFlag{Name: "preview", Usage: "paint a checkerboard under a transparent background"},
		&cli.BoolFlag{Name: "no-validate", Usage: "skip the scan check"},
	)
	flags = append(flags, payloadFlags()...)

	return &cli.Command{
		Name:      "generate",
		Usage:     "render one QR code",
		ArgsUsage: "<content>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			text, err := payload(c)
			if err != nil {
				return err
			}
			if text == "" {
				return cli.Exit("content is required", 2)
			}

			s, err := loadStyle(c)
			if err != nil {
				return err
			}
			format, err := standard.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			enc, err := qrforge.NewEncoder(c.String("encoder"))
			if err != nil {
				return err
			}

			est := validate.NewEstimator(validate.NewZXingDecoder(), validate.WithEstimatorLogger(logger))
			session := validate.NewSession(enc, est,
				validate.WithCanvasSize(c.Int("size")),
				validate.WithRenderOptions(logoOptions(c)...),
			)
			session.SetContent(text)
			session.SetStyle(s)

			opts := []standard.ImageOption{standard.WithFormat(format)}
			if c.Bool("preview") {
				opts = append(opts, standard.WithPreview())
			}
			a, err := session.Render(c.Context, opts...)
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				out = "qrcode." + format.Extension()
			}
			if err = os.WriteFile(out, a.Bytes(), 0o644); err != nil {
				return errors.Wrapf(err, "write %s", out)
			}
			logger.WithFields(logrus.Fields{
				"file": out,
				"type": content.DetectType(text),
				"id":   a.ID(),
			}).Info("qr code written")

			if c.Bool("no-validate") {
				return nil
			}
			v, err := session.Validate(c.Context)
			if err != nil && v.State != validate.StateFail {
				return err
			}
			printVerdict(v)
			return nil
		},
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "decode a QR code from a PNG or JPEG image",
		ArgsUsage: "<image>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("image path is required", 2)
			}

			fd, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "open %s", path)
			}
			defer fd.Close()

			img, err := imgkit.Read(fd)
			if err != nil {
				return err
			}
			text, err := validate.NewZXingDecoder().DecodeImage(c.Context, img)
			if err != nil {
				return err
			}

			logger.WithField("type", content.DetectType(text)).Debug("decoded")
			fmt.Println(text)
			return nil
		},
	}
}

func batchCommand() *cli.Command {
	flags := append(renderFlags(),
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "qr-codes.zip", Usage: "output ZIP archive"},
		&cli.DurationFlag{Name: "timeout", Usage: "per row time limit, 30s when unset"},
	)

	return &cli.Command{
		Name:      "batch",
		Usage:     "render every row of a CSV with a content column into a ZIP archive",
		ArgsUsage: "<file.csv>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("CSV path is required", 2)
			}

			fd, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "open %s", path)
			}
			items, err := batch.ParseCSV(fd)
			fd.Close()
			if err != nil {
				return err
			}

			s, err := loadStyle(c)
			if err != nil {
				return err
			}
			format, err := standard.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}
			enc, err := qrforge.NewEncoder(c.String("encoder"))
			if err != nil {
				return err
			}

			est := validate.NewEstimator(validate.NewZXingDecoder(), validate.WithEstimatorLogger(logger))
			co := batch.NewCoordinator(enc, est, s,
				batch.WithLogger(logger),
				batch.WithCanvasSize(c.Int("size")),
				batch.WithFormat(format),
				batch.WithRowTimeout(c.Duration("timeout")),
				batch.WithRenderOptions(logoOptions(c)...),
			)
			co.Load(items)

			if err = co.GenerateAll(c.Context); err != nil {
				logger.WithError(err).Warn("batch did not finish validation")
			}
			for _, r := range co.Rows() {
				entry := logger.WithFields(logrus.Fields{"row": r.Index, "status": r.Status})
				if r.Status == batch.StatusError {
					entry.WithField("error", r.Err).Warn(r.Content)
					continue
				}
				entry.Info(r.Content)
			}

			out, err := os.Create(c.String("out"))
			if err != nil {
				return errors.Wrapf(err, "create %s", c.String("out"))
			}
			defer out.Close()

			if err = co.Export(out, nil); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"file":     c.String("out"),
				"progress": co.Progress(),
				"complete": co.AllGenerated(),
			}).Info("archive written")
			return nil
		},
	}
}

// loadStyle reads the optional JSON style file and applies the style flags
// on top of it.
func loadStyle(c *cli.Context) (style.Style, error) {
	var cfg style.Config
	if path := c.String("style"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return style.Style{}, errors.Wrapf(err, "read style %s", path)
		}
		if err = json.Unmarshal(b, &cfg); err != nil {
			return style.Style{}, errors.Wrapf(err, "parse style %s", path)
		}
	}

	set := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	set("module", &cfg.ModuleShape)
	set("eye", &cfg.EyeShape)
	set("fg", &cfg.Foreground)
	set("bg", &cfg.Background)
	set("ec", &cfg.ErrorCorrection)

	if g := c.String("gradient"); g != "" {
		stops := strings.SplitN(g, ",", 2)
		if len(stops) != 2 {
			return style.Style{}, errors.Errorf("gradient wants two colours, got %q", g)
		}
		cfg.Gradient = &style.GradientConfig{From: stops[0], To: stops[1]}
	}
	if c.String("logo") != "" && cfg.Logo == nil {
		cfg.Logo = &style.LogoConfig{}
	}
	if cfg.Logo != nil {
		set("logo-shape", &cfg.Logo.Shape)
		set("logo-position", &cfg.Logo.Position)
		if c.IsSet("logo-size") {
			cfg.Logo.SizePercent = c.Int("logo-size")
		}
	}

	return style.Resolve(cfg), nil
}

func logoOptions(c *cli.Context) []standard.ImageOption {
	path := c.String("logo")
	if path == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return []standard.ImageOption{standard.WithLogoImageFileJPEG(path)}
	}
	return []standard.ImageOption{standard.WithLogoImageFilePNG(path)}
}

func printVerdict(v validate.Verdict) {
	fmt.Printf("%s: %s\n", strings.ToUpper(v.State.String()), v.Message)
	for _, s := range v.Suggestions {
		fmt.Printf("  - %s\n", s)
	}
}
