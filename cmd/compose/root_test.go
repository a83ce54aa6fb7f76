package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/youruser/framecard/internal/surface"
)

func writePhoto(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 160, 120))
	for y := 0; y < 120; y++ {
		for x := 0; x < 160; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 200, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(dir, "photo.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	return path
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    surface.Point
		wantErr bool
	}{
		{in: "0,0", want: surface.Point{}},
		{in: " 12, -7.5 ", want: surface.Point{X: 12, Y: -7.5}},
		{in: "12", wantErr: true},
		{in: "a,1", wantErr: true},
		{in: "1,b", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseOffset(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseOffset(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseOffset(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseOffset(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestClockInUsesConfiguredZone(t *testing.T) {
	// 18:00 UTC on the 9th is already the 10th in Ho Chi Minh City.
	fixed := func() time.Time { return time.Date(2025, 3, 9, 18, 0, 0, 0, time.UTC) }

	now, err := clockIn("Asia/Ho_Chi_Minh", fixed)
	if err != nil {
		t.Fatalf("clockIn: %v", err)
	}
	if got := now(); got.Day() != 10 || got.Hour() != 1 {
		t.Fatalf("expected 01:00 on the 10th, got %v", got)
	}

	utc, err := clockIn("", fixed)
	if err != nil {
		t.Fatalf("clockIn: %v", err)
	}
	if got := utc(); got.Day() != 9 {
		t.Fatalf("empty zone should stay in UTC, got %v", got)
	}

	if _, err := clockIn("Mars/Olympus_Mons", fixed); err == nil {
		t.Fatal("expected an error for an unknown zone")
	}
}

func TestComposeWritesBothSurfaces(t *testing.T) {
	dir := t.TempDir()
	photo := writePhoto(t, dir)
	out := filepath.Join(dir, "out")

	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{
		"--photo", photo,
		"--name", "Minh",
		"--join-date", "2020-01-01",
		"--avatar-offset", "10,-4",
		"--zoom", "20",
		"--out", out,
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	for _, id := range surface.All {
		spec := surface.MustLookup(id)
		path := filepath.Join(out, spec.Filename)
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("open %s: %v", path, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if b := img.Bounds(); b.Dx() != spec.Width || b.Dy() != spec.Height {
			t.Fatalf("%s: size %dx%d", id, b.Dx(), b.Dy())
		}
		if !strings.Contains(stdout.String(), spec.Filename) {
			t.Fatalf("expected %s in output %q", spec.Filename, stdout.String())
		}
	}
}

func TestComposeRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	photo := writePhoto(t, dir)

	tests := [][]string{
		{},
		{"--photo", photo, "--zoom", "400"},
		{"--photo", photo, "--join-date", "yesterday"},
		{"--photo", photo, "--card-offset", "3"},
		{"--photo", photo, "--timezone", "Nowhere/Place"},
		{"--photo", photo, "--max-pixels", "100"},
		{"--photo", filepath.Join(dir, "missing.png")},
	}
	for _, args := range tests {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append(args, "--out", filepath.Join(dir, "out")))
		if err := cmd.Execute(); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}
