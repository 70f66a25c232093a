package mdexport

import (
	"context"
	"errors"
	"testing"
)

func TestPDFOptions(t *testing.T) {
	t.Parallel()

	opts := pdfOptions()

	if *opts.PaperWidth != paperWidthInches || *opts.PaperHeight != paperHeightInches {
		t.Errorf("paper = %vx%v, want US Letter", *opts.PaperWidth, *opts.PaperHeight)
	}
	for name, m := range map[string]*float64{
		"top": opts.MarginTop, "bottom": opts.MarginBottom, "left": opts.MarginLeft, "right": opts.MarginRight,
	} {
		if m == nil || *m != marginInches {
			t.Errorf("margin %s = %v, want %v", name, m, marginInches)
		}
	}
	if !opts.PrintBackground {
		t.Error("PrintBackground should be set")
	}
}

func TestRodPrinter_ContextCanceled(t *testing.T) {
	t.Parallel()

	p := newRodPrinter(newBrowserSession(defaultTimeout))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.PrintPDF(ctx, "<html></html>"); !errors.Is(err, context.Canceled) {
		t.Errorf("PrintPDF() error = %v, want context.Canceled", err)
	}
}

func TestRodRasterizer_ContextCanceled(t *testing.T) {
	t.Parallel()

	r := newRodRasterizer(newBrowserSession(defaultTimeout))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Rasterize(ctx, "<svg></svg>", 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Rasterize() error = %v, want context.Canceled", err)
	}
}

func TestBrowserSession_CloseWithoutLaunch(t *testing.T) {
	t.Parallel()

	s := newBrowserSession(defaultTimeout)
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestNoSandbox(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{name: "plain", env: map[string]string{"CI": "", "ROD_BROWSER_BIN": "", "ROD_NO_SANDBOX": ""}, want: false},
		{name: "ci", env: map[string]string{"CI": "true", "ROD_BROWSER_BIN": "", "ROD_NO_SANDBOX": ""}, want: true},
		{name: "preinstalled browser", env: map[string]string{"CI": "", "ROD_BROWSER_BIN": "/usr/bin/chromium", "ROD_NO_SANDBOX": ""}, want: true},
		{name: "explicit", env: map[string]string{"CI": "", "ROD_BROWSER_BIN": "", "ROD_NO_SANDBOX": "1"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := noSandbox(); got != tt.want {
				t.Errorf("noSandbox() = %v, want %v", got, tt.want)
			}
		})
	}
}
