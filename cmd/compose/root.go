package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/youruser/framecard/internal/config"
	"github.com/youruser/framecard/internal/editor"
	imagepkg "github.com/youruser/framecard/internal/image"
	"github.com/youruser/framecard/internal/surface"
	"github.com/youruser/framecard/internal/util"
)

type options struct {
	photo        string
	name         string
	joinDate     string
	avatarOffset string
	cardOffset   string
	zoom         int
	out          string
	locale       string
	fontFile     string
	avatarFrame  string
	cardFrame    string
	timeZone     string
	maxPixels    int64
	timeout      time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Render the anniversary avatar and card from a photo",
		Long: "compose renders both framed surfaces offline, the same way the web\n" +
			"composer does, and writes them as PNG files.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, func(format string, a ...any) {
				fmt.Fprintf(cmd.OutOrStdout(), format, a...)
			})
		},
	}

	// Defaults follow the server environment so both render alike.
	var env config.Config
	_ = config.ParseEnv(&env)

	f := cmd.Flags()
	f.StringVar(&opts.photo, "photo", "", "photo file path or http(s) URL")
	f.StringVar(&opts.name, "name", "", "name printed on the card")
	f.StringVar(&opts.joinDate, "join-date", "", "join date as YYYY-MM-DD")
	f.StringVar(&opts.avatarOffset, "avatar-offset", "0,0", "avatar drag offset as dx,dy")
	f.StringVar(&opts.cardOffset, "card-offset", "0,0", "card drag offset as dx,dy")
	f.IntVar(&opts.zoom, "zoom", 0, fmt.Sprintf("extra zoom, 0..%d", editor.MaxZoom))
	f.StringVarP(&opts.out, "out", "o", ".", "output directory")
	f.StringVar(&opts.locale, "locale", env.Locale, "hours label language (vi or en)")
	f.StringVar(&opts.fontFile, "font", env.FontFile, "TrueType/OpenType font for card text")
	f.StringVar(&opts.avatarFrame, "avatar-frame", env.AvatarFrame, "avatar frame file or URL, empty for the bundled one")
	f.StringVar(&opts.cardFrame, "card-frame", env.CardFrame, "card frame file or URL, empty for the bundled one")
	f.StringVar(&opts.timeZone, "timezone", env.TimeZone, "IANA zone used to count days for the hours label")
	f.Int64Var(&opts.maxPixels, "max-pixels", env.MaxPixels, "largest photo accepted, in pixels")
	f.DurationVar(&opts.timeout, "timeout", time.Minute, "overall time limit")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}

func run(ctx context.Context, opts *options, printf func(string, ...any)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	offsets := map[surface.ID]surface.Point{}
	for id, raw := range map[surface.ID]string{surface.Avatar: opts.avatarOffset, surface.Card: opts.cardOffset} {
		p, err := parseOffset(raw)
		if err != nil {
			return fmt.Errorf("--%s-offset: %w", id, err)
		}
		offsets[id] = p
	}

	var join *editor.Date
	if opts.joinDate != "" {
		d, err := editor.ParseDate(opts.joinDate)
		if err != nil {
			return fmt.Errorf("--join-date: %w", err)
		}
		join = &d
	}

	now, err := clockIn(opts.timeZone, time.Now)
	if err != nil {
		return fmt.Errorf("--timezone: %w", err)
	}

	data, err := readPhoto(ctx, opts.photo)
	if err != nil {
		return err
	}
	font, err := imagepkg.LoadFont(opts.fontFile)
	if err != nil {
		return err
	}

	e := editor.New(ctx, editor.Options{
		Frames: imagepkg.NewFrameSet(map[surface.ID]string{
			surface.Avatar: opts.avatarFrame,
			surface.Card:   opts.cardFrame,
		}),
		Font:   font,
		Locale: opts.locale,
		Now:    now,
		Decode: imagepkg.NewPhotoDecoder(opts.maxPixels),
	})
	if err := e.SetZoom(opts.zoom); err != nil {
		return fmt.Errorf("--zoom: %w", err)
	}
	e.SetName(opts.name)
	e.SetJoinDate(join)

	e.UploadPhoto(data)
	if err := e.WaitPhoto(ctx); err != nil {
		return fmt.Errorf("decode photo: %w", err)
	}

	if err := util.EnsureDir(opts.out); err != nil {
		return err
	}
	for _, id := range surface.All {
		if err := applyOffset(e, id, offsets[id]); err != nil {
			return err
		}
		comp, err := e.Composite(id)
		if err != nil {
			return err
		}
		path := filepath.Join(opts.out, surface.MustLookup(id).Filename)
		if err := util.WriteFileAtomic(path, comp.PNG); err != nil {
			return err
		}
		printf("wrote %s\n", path)
	}
	return nil
}

// clockIn returns now shifted into the named zone, so the day count matches
// what the server renders for the same configuration.
func clockIn(zone string, now func() time.Time) (func() time.Time, error) {
	loc, err := config.Config{TimeZone: zone}.Location()
	if err != nil {
		return nil, err
	}
	return func() time.Time { return now().In(loc) }, nil
}

// applyOffset replays the offset as a single drag gesture.
func applyOffset(e *editor.Editor, id surface.ID, p surface.Point) error {
	if p == (surface.Point{}) {
		return nil
	}
	ok, err := e.StartDrag(id, editor.SourcePointer, surface.Point{})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: no photo to move", id)
	}
	_, err = e.EndDrag(id, editor.SourcePointer, &p)
	return err
}

func readPhoto(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, errors.New("--photo is required")
	}
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return util.GetBytes(ctx, src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	return data, nil
}

func parseOffset(s string) (surface.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return surface.Point{}, fmt.Errorf("want dx,dy, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return surface.Point{}, fmt.Errorf("bad dx %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return surface.Point{}, fmt.Errorf("bad dy %q: %w", ys, err)
	}
	return surface.Point{X: x, Y: y}, nil
}
