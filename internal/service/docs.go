package service

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bluele/gcache"
	"github.com/phpdave11/gofpdf"

	"metro/internal/domain"
	"metro/internal/qr"
)

// Ticket document cache defaults.
const (
	DefaultDocumentCacheSize = 256
	DocumentCacheTTL         = 30 * time.Minute
)

// DocumentService renders printable e-tickets. Rendered PDFs are cached per
// issued ticket; tickets never change after issue.
type DocumentService struct {
	cache gcache.Cache
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(cacheSize int) *DocumentService {
	if cacheSize <= 0 {
		cacheSize = DefaultDocumentCacheSize
	}
	return &DocumentService{
		cache: gcache.New(cacheSize).LRU().Expiration(DocumentCacheTTL).Build(),
	}
}

// TicketPDF returns the e-ticket PDF and its download filename.
func (s *DocumentService) TicketPDF(ticket *domain.IssuedTicket) ([]byte, string, error) {
	filename := TicketFilename(ticket.ID, "pdf")
	key := documentKey(ticket)

	if v, err := s.cache.Get(key); err == nil {
		if data, ok := v.([]byte); ok {
			return data, filename, nil
		}
	} else if !errors.Is(err, gcache.KeyNotFoundError) {
		return nil, "", err
	}

	data, err := buildTicketPDF(ticket)
	if err != nil {
		return nil, "", err
	}
	_ = s.cache.Set(key, data)

	return data, filename, nil
}

// documentKey identifies an issued ticket across sessions. Ticket ids alone
// repeat between sessions; draft ids and payment ids do not.
func documentKey(t *domain.IssuedTicket) string {
	return t.DraftID + "/" + t.PaymentID + "/" + t.ID
}

func buildTicketPDF(t *domain.IssuedTicket) ([]byte, error) {
	png, err := qr.DecodeBase64(t.QRCode)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("CMRL E-Ticket "+t.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(0x00, 0x33, 0x66)
	pdf.Cell(0, 10, "CHENNAI METRO E-TICKET")
	pdf.Ln(12)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		"Ticket ID  : " + t.ID,
		// Core fonts are cp1252; the journey arrow is not representable.
		"Journey    : " + t.Origin + " -> " + t.Destination,
		"Type       : " + t.TicketType,
		fmt.Sprintf("Passengers : %d", len(t.Passengers)),
		"Fare       : Rs. " + FormatRupees(t.Fare),
		"Valid on   : " + t.ValidOn,
		"Payment ID : " + t.PaymentID,
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Passenger details")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	for i, p := range t.Passengers {
		pdf.Cell(0, 6, fmt.Sprintf("%d. %s  (%s)", i+1, p.Name, p.Phone))
		pdf.Ln(6)
	}

	imageName := "qr-" + t.ID
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(imageName, opts, bytes.NewReader(png))
	pdf.Ln(4)
	pdf.ImageOptions(imageName, pdf.GetX(), pdf.GetY(), 45, 45, true, opts, 0, "")

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Show this QR code at the station gate. Demo ticket, no real payment was taken.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatRupees renders an amount with thousands separators.
func FormatRupees(amount int) string {
	if amount < 0 {
		return "-" + FormatRupees(-amount)
	}
	s := strconv.Itoa(amount)
	var out []byte
	for i := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}
