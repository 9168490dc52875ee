package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestOptionsDefaults(t *testing.T) {
	got, err := Options{URL: "http://127.0.0.1/calendar"}.withDefaults()
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != DefaultWidth || got.Height != DefaultHeight || got.Timeout != DefaultTimeout {
		t.Errorf("defaults = %+v", got)
	}

	got, err = Options{URL: "x", Width: 800, Height: 600, Timeout: time.Second}.withDefaults()
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 800 || got.Height != 600 || got.Timeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", got)
	}
}

func TestMissingURL(t *testing.T) {
	if _, err := PrintPDF(context.Background(), Options{}); !errors.Is(err, ErrNoURL) {
		t.Errorf("PrintPDF err = %v", err)
	}
	if _, err := ScreenshotPNG(context.Background(), Options{}); !errors.Is(err, ErrNoURL) {
		t.Errorf("ScreenshotPNG err = %v", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		resp    *network.Response
		wantErr bool
	}{
		{nil, false},
		{&network.Response{Status: 200, StatusText: "OK"}, false},
		{&network.Response{Status: 204}, false},
		{&network.Response{Status: 422, StatusText: "Unprocessable Entity"}, true},
		{&network.Response{Status: 500}, true},
		{&network.Response{Status: 304}, true},
	}
	for _, tt := range tests {
		err := checkStatus(tt.resp)
		if got := err != nil; got != tt.wantErr {
			t.Errorf("checkStatus(%+v) = %v, wantErr %v", tt.resp, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrPageStatus) {
			t.Errorf("err = %v, want ErrPageStatus", err)
		}
	}
}
