package service

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"metro/internal/domain"
	"metro/internal/qr"
)

type recordingEncoder struct {
	content string
	err     error
}

func (e *recordingEncoder) EncodeBase64(content string) (string, error) {
	e.content = content
	if e.err != nil {
		return "", e.err
	}
	return "cXI=", nil
}

func testDraft() *domain.DraftBooking {
	return &domain.DraftBooking{
		ID:          "draft-1",
		Origin:      "Chennai Central",
		Destination: "Airport",
		TicketType:  "Single Journey",
		Passengers: []domain.Passenger{
			{Name: "Asha", Phone: "9876543210"},
			{Name: "Ravi", Phone: "9123456780"},
		},
		Fare:  50,
		Total: 100,
	}
}

var ticketIDPattern = regexp.MustCompile(`^CMRL-[1-9][0-9]{3}-20250315$`)

func TestTicketIssuer_Issue(t *testing.T) {
	now := time.Date(2025, time.March, 15, 18, 5, 0, 0, time.UTC)
	enc := &recordingEncoder{}
	issuer := NewTicketIssuer(enc, fixedClock(now), rand.New(rand.NewPCG(7, 7)))

	draft := testDraft()
	ticket, err := issuer.Issue(draft, "PMT482913", nil)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if !ticketIDPattern.MatchString(ticket.ID) {
		t.Errorf("unexpected ticket id %q", ticket.ID)
	}
	if enc.content != "CMRL|Chennai Central|Airport|Single Journey|PMT482913" {
		t.Errorf("unexpected qr descriptor %q", enc.content)
	}
	if ticket.Journey != "Chennai Central → Airport" {
		t.Errorf("unexpected journey %q", ticket.Journey)
	}
	if ticket.Fare != 100 {
		t.Errorf("expected fare to be the draft total 100, got %d", ticket.Fare)
	}
	if ticket.ValidOn != "15 Mar 2025" {
		t.Errorf("unexpected valid on %q", ticket.ValidOn)
	}
	if ticket.QRCode != "cXI=" || ticket.PaymentID != "PMT482913" || ticket.DraftID != "draft-1" {
		t.Errorf("unexpected ticket %+v", ticket)
	}

	draft.Passengers[0].Name = "Changed"
	if ticket.Passengers[0].Name != "Asha" {
		t.Error("ticket passengers share memory with the draft")
	}
}

func TestTicketIssuer_IDsStayInRange(t *testing.T) {
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	issuer := NewTicketIssuer(&recordingEncoder{}, fixedClock(now), nil)

	for i := 0; i < 500; i++ {
		ticket, err := issuer.Issue(testDraft(), "PMT100000", nil)
		if err != nil {
			t.Fatal(err)
		}
		if !ticketIDPattern.MatchString(ticket.ID) {
			t.Fatalf("ticket id %q out of range", ticket.ID)
		}
	}
}

func TestTicketIssuer_RedrawsTakenID(t *testing.T) {
	now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)

	first, err := NewTicketIssuer(&recordingEncoder{}, fixedClock(now), rand.New(rand.NewPCG(3, 9))).
		Issue(testDraft(), "PMT100001", nil)
	if err != nil {
		t.Fatal(err)
	}

	// Same seed, so the first draw repeats the id above.
	issuer := NewTicketIssuer(&recordingEncoder{}, fixedClock(now), rand.New(rand.NewPCG(3, 9)))
	var draws int
	second, err := issuer.Issue(testDraft(), "PMT100002", func(id string) bool {
		draws++
		return id == first.ID
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID == first.ID {
		t.Errorf("expected a new id, got %q again", second.ID)
	}
	if draws != 2 {
		t.Errorf("expected 2 draws, got %d", draws)
	}
	if !ticketIDPattern.MatchString(second.ID) {
		t.Errorf("unexpected ticket id %q", second.ID)
	}
}

func TestTicketIssuer_AllIDsTaken(t *testing.T) {
	issuer := NewTicketIssuer(&recordingEncoder{}, nil, nil)

	_, err := issuer.Issue(testDraft(), "PMT100000", func(string) bool { return true })
	if !errors.Is(err, ErrTicketIDExhausted) {
		t.Errorf("expected ErrTicketIDExhausted, got %v", err)
	}
}

func TestTicketIssuer_EncoderFailure(t *testing.T) {
	boom := errors.New("boom")
	issuer := NewTicketIssuer(&recordingEncoder{err: boom}, nil, nil)

	if _, err := issuer.Issue(testDraft(), "PMT100000", nil); !errors.Is(err, boom) {
		t.Errorf("expected encoder error, got %v", err)
	}
}

func TestTicketFilename(t *testing.T) {
	if got := TicketFilename("CMRL-1234-20250315", "png"); got != "cmrl_ticket_CMRL-1234-20250315.png" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestDocumentService_TicketPDF(t *testing.T) {
	issuer := NewTicketIssuer(qr.NewEncoder(), nil, nil)
	ticket, err := issuer.Issue(testDraft(), "PMT654321", nil)
	if err != nil {
		t.Fatal(err)
	}

	docs := NewDocumentService(4)
	pdf, filename, err := docs.TicketPDF(ticket)
	if err != nil {
		t.Fatalf("TicketPDF returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if filename != TicketFilename(ticket.ID, "pdf") {
		t.Errorf("unexpected filename %q", filename)
	}

	again, _, err := docs.TicketPDF(ticket)
	if err != nil {
		t.Fatal(err)
	}
	if &again[0] != &pdf[0] {
		t.Error("expected the cached document to be returned")
	}
}

func TestDocumentService_SameTicketIDAcrossSessions(t *testing.T) {
	encoder := qr.NewEncoder()
	now := time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC)

	newTicket := func(draftID, paymentID, name, phone string) *domain.IssuedTicket {
		draft := testDraft()
		draft.ID = draftID
		draft.Passengers = []domain.Passenger{{Name: name, Phone: phone}}
		ticket, err := NewTicketIssuer(encoder, fixedClock(now), nil).Issue(draft, paymentID, nil)
		if err != nil {
			t.Fatal(err)
		}
		ticket.ID = "CMRL-1234-20250315"
		return ticket
	}
	alice := newTicket("draft-alice", "PMT100001", "Alice", "9876543210")
	bob := newTicket("draft-bob", "PMT100002", "Bob", "9123456780")

	docs := NewDocumentService(4)
	alicePDF, _, err := docs.TicketPDF(alice)
	if err != nil {
		t.Fatal(err)
	}
	bobPDF, _, err := docs.TicketPDF(bob)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(alicePDF, bobPDF) {
		t.Fatal("a ticket with a repeated id was served another session's document")
	}
	again, _, err := docs.TicketPDF(alice)
	if err != nil {
		t.Fatal(err)
	}
	if &again[0] != &alicePDF[0] {
		t.Error("expected the first document to stay cached")
	}
}

func TestDocumentService_RejectsCorruptQR(t *testing.T) {
	ticket := &domain.IssuedTicket{ID: "CMRL-1000-20250315", QRCode: "%%%"}

	if _, _, err := NewDocumentService(0).TicketPDF(ticket); err == nil {
		t.Error("expected error for corrupt qr payload")
	}
}

func TestFormatRupees(t *testing.T) {
	testCases := map[int]string{
		0:       "0",
		50:      "50",
		999:     "999",
		1000:    "1,000",
		1500000: "1,500,000",
		-2500:   "-2,500",
	}
	for in, want := range testCases {
		if got := FormatRupees(in); got != want {
			t.Errorf("FormatRupees(%d) = %q, want %q", in, got, want)
		}
	}
}
