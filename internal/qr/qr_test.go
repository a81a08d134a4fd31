package qr

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestEncoder_PNGIsDecodable(t *testing.T) {
	enc := NewEncoder()

	data, err := enc.PNG("CMRL|Chennai Central|Airport|Single Journey|PMT123456")
	if err != nil {
		t.Fatalf("PNG returned error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != bounds.Dy() {
		t.Errorf("expected square image, got %dx%d", bounds.Dx(), bounds.Dy())
	}
	if bounds.Dx()%DefaultModuleSize != 0 {
		t.Errorf("expected width to be a multiple of %d, got %d", DefaultModuleSize, bounds.Dx())
	}
}

func TestBase64_RoundTrip(t *testing.T) {
	enc := NewEncoder()

	payload, err := enc.EncodeBase64("CMRL|Egmore|Guindy|Day Pass|PMT654321")
	if err != nil {
		t.Fatalf("EncodeBase64 returned error: %v", err)
	}

	raw, err := DecodeBase64(payload)
	if err != nil {
		t.Fatalf("DecodeBase64 returned error: %v", err)
	}

	if got := EncodeBase64(raw); got != payload {
		t.Error("re-encoding decoded bytes did not reproduce the payload")
	}

	if _, err := png.Decode(bytes.NewReader(raw)); err != nil {
		t.Errorf("decoded bytes are not a PNG: %v", err)
	}
}

func TestDecodeBase64_RejectsGarbage(t *testing.T) {
	if _, err := DecodeBase64("not base64!"); err == nil {
		t.Error("expected error for invalid payload")
	}
}

func TestDataURI(t *testing.T) {
	uri := DataURI("abcd")
	if !strings.HasPrefix(uri, "data:image/png;base64,") || !strings.HasSuffix(uri, "abcd") {
		t.Errorf("unexpected data uri %q", uri)
	}
}
