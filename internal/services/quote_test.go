package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/mail"
	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/signature"
)

func setupQuoteTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Agency{}, &models.User{}, &models.Client{}, &models.Lead{},
		&models.Product{}, &models.Quote{}, &models.QuoteItem{},
		&models.QuoteSignature{}, &models.QuoteSequence{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedQuoteFixtures(t *testing.T, db *gorm.DB) (agency models.Agency, client models.Client, lead models.Lead) {
	t.Helper()
	agency = models.Agency{Name: "Studio North", Template: "modern", AccentColor: "#2563eb", Email: "hello@studionorth.test"}
	if err := db.Create(&agency).Error; err != nil {
		t.Fatalf("agency: %v", err)
	}
	client = models.Client{AgencyID: agency.ID, Name: "Acme Ltd", Email: "billing@acme.test"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	lead = models.Lead{AgencyID: agency.ID, Name: "Globex", Email: "cfo@globex.test"}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("lead: %v", err)
	}
	return
}

func newTestService(db *gorm.DB) (*QuoteService, *mail.RecordingDispatcher) {
	rec := &mail.RecordingDispatcher{}
	svc := NewQuoteService(db, rec, "https://app.test")
	return svc, rec
}

func validInput(clientID uint) CreateQuoteInput {
	return CreateQuoteInput{
		Title:         "Website redesign",
		RecipientKind: "client",
		RecipientID:   clientID,
		ValidUntil:    time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		Items: []QuoteItemInput{
			{Name: "Design sprint", Quantity: 2, UnitPrice: 10000},
			{Name: "Development", Quantity: 1, UnitPrice: 5000},
		},
	}
}

func drawnSignature(t *testing.T) string {
	t.Helper()
	p := signature.NewPad(300, 120)
	p.StartStroke(signature.Point{X: 30, Y: 60})
	p.ContinueStroke(signature.Point{X: 120, Y: 40})
	p.ContinueStroke(signature.Point{X: 250, Y: 70})
	p.EndStroke()
	uri, err := p.Export()
	if err != nil {
		t.Fatalf("export signature: %v", err)
	}
	return uri
}

func TestCreateComputesTotals(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, _ := seedQuoteFixtures(t, db)
	svc, _ := newTestService(db)

	q, err := svc.Create(agency.ID, validInput(client.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Subtotal != 25000 || q.VATAmount != 4500 || q.Total != 29500 {
		t.Fatalf("totals = %d/%d/%d, want 25000/4500/29500", q.Subtotal, q.VATAmount, q.Total)
	}
	if q.Status != models.QuoteStatusDraft {
		t.Fatalf("status = %s, want draft", q.Status)
	}
	if q.Number != 1 {
		t.Fatalf("number = %d, want 1", q.Number)
	}
	if q.RecipientName != "Acme Ltd" || q.RecipientEmail != "billing@acme.test" {
		t.Fatalf("recipient not denormalized: %q %q", q.RecipientName, q.RecipientEmail)
	}
	if q.PublicToken == "" {
		t.Fatal("missing public token")
	}
	var sum int64
	for _, it := range q.Items {
		sum += int64(it.Total)
	}
	if sum != int64(q.Subtotal) {
		t.Fatalf("subtotal %d != item sum %d", q.Subtotal, sum)
	}
}

func TestCreateValidation(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, _ := seedQuoteFixtures(t, db)
	svc, _ := newTestService(db)

	in := validInput(client.ID)
	in.Items = nil
	var verr *ValidationError
	if _, err := svc.Create(agency.ID, in); !errors.As(err, &verr) {
		t.Fatalf("empty items: expected ValidationError, got %v", err)
	}

	in = validInput(client.ID)
	in.Title = ""
	if _, err := svc.Create(agency.ID, in); !errors.As(err, &verr) {
		t.Fatalf("empty title: expected ValidationError, got %v", err)
	}

	in = validInput(client.ID)
	in.Items[0].Quantity = 0
	if _, err := svc.Create(agency.ID, in); !errors.As(err, &verr) {
		t.Fatalf("zero quantity: expected ValidationError, got %v", err)
	}

	in = validInput(client.ID)
	in.ValidUntil = "15-10-2026"
	if _, err := svc.Create(agency.ID, in); !errors.As(err, &verr) {
		t.Fatalf("bad date: expected ValidationError, got %v", err)
	}
}

func TestCreateRecipientScoping(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, lead := seedQuoteFixtures(t, db)
	svc, _ := newTestService(db)

	in := validInput(client.ID + lead.ID + 99)
	if _, err := svc.Create(agency.ID, in); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}

	// a lead recipient works and sets the lead reference
	in = validInput(lead.ID)
	in.RecipientKind = "lead"
	q, err := svc.Create(agency.ID, in)
	if err != nil {
		t.Fatalf("lead quote: %v", err)
	}
	if q.LeadID == nil || *q.LeadID != lead.ID || q.ClientID != nil {
		t.Fatalf("lead reference wrong: %+v", q)
	}

	// another agency cannot reach this client
	other := models.Agency{Name: "Other"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(other.ID, validInput(client.ID)); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("cross-agency recipient: expected ErrRecipientNotFound, got %v", err)
	}
}

func TestQuoteNumbersSequentialPerAgency(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, _ := seedQuoteFixtures(t, db)
	svc, _ := newTestService(db)

	other := models.Agency{Name: "Other"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatal(err)
	}
	otherClient := models.Client{AgencyID: other.ID, Name: "OtherCo", Email: "x@other.test"}
	if err := db.Create(&otherClient).Error; err != nil {
		t.Fatal(err)
	}

	seen := map[int]bool{}
	for i := 0; i < 5; i++ {
		q, err := svc.Create(agency.ID, validInput(client.ID))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[q.Number] {
			t.Fatalf("duplicate number %d", q.Number)
		}
		seen[q.Number] = true
		if q.Number != i+1 {
			t.Fatalf("number = %d, want %d", q.Number, i+1)
		}
	}
	// the other agency starts its own sequence
	q, err := svc.Create(other.ID, validInput(otherClient.ID))
	if err != nil {
		t.Fatalf("other agency create: %v", err)
	}
	if q.Number != 1 {
		t.Fatalf("other agency number = %d, want 1", q.Number)
	}
}

func TestSendEmailTransitionsOnlyAfterDispatch(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, _ := seedQuoteFixtures(t, db)
	svc, rec := newTestService(db)

	q, err := svc.Create(agency.ID, validInput(client.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// failing transport leaves the quote in draft
	rec.Err = errors.New("smtp down")
	if _, err := svc.SendEmail(context.Background(), agency.ID, q.ID); !errors.Is(err, ErrDispatchFailed) {
		t.Fatalf("expected ErrDispatchFailed, got %v", err)
	}
	reloaded, _ := svc.Get(agency.ID, q.ID)
	if reloaded.Status != models.QuoteStatusDraft {
		t.Fatalf("status after failed dispatch = %s, want draft", reloaded.Status)
	}

	// successful dispatch transitions to sent and records the message
	rec.Err = nil
	sent, err := svc.SendEmail(context.Background(), agency.ID, q.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Status != models.QuoteStatusSent || sent.SentAt == nil {
		t.Fatalf("not marked sent: %+v", sent.Status)
	}
	msgs := rec.Sent()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].To != "billing@acme.test" {
		t.Fatalf("to = %s", msgs[0].To)
	}
	if len(msgs[0].Attachments) != 1 || msgs[0].Attachments[0].ContentType != "application/pdf" {
		t.Fatalf("missing pdf attachment: %+v", msgs[0].Attachments)
	}

	// re-send keeps the quote in sent
	if _, err := svc.SendEmail(context.Background(), agency.ID, q.ID); err != nil {
		t.Fatalf("re-send: %v", err)
	}
}

func TestApproveRecordsSignatureAtomically(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, _ := seedQuoteFixtures(t, db)
	svc, _ := newTestService(db)

	q, _ := svc.Create(agency.ID, validInput(client.ID))
	if _, err := svc.MarkSent(agency.ID, q.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	sig := drawnSignature(t)
	approved, err := svc.Approve(q.PublicToken, sig, "203.0.113.9", "Mozilla/5.0")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.QuoteStatusApproved || approved.DecidedAt == nil {
		t.Fatalf("not approved: %s", approved.Status)
	}
	if approved.Signature == nil || approved.Signature.IPAddress != "203.0.113.9" {
		t.Fatalf("signature not recorded: %+v", approved.Signature)
	}

	// second approval attempt fails idempotently and changes nothing
	if _, err := svc.Approve(q.PublicToken, sig, "203.0.113.10", "curl/8"); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	reloaded, _ := svc.Get(agency.ID, q.ID)
	if reloaded.Signature == nil || reloaded.Signature.IPAddress != "203.0.113.9" {
		t.Fatalf("signature mutated after repeat approve: %+v", reloaded.Signature)
	}
	if _, err := svc.Reject(q.PublicToken); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("reject after approve: expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestApproveRequiresDrawnSignature(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, _ := seedQuoteFixtures(t, db)
	svc, _ := newTestService(db)

	q, _ := svc.Create(agency.ID, validInput(client.ID))
	if _, err := svc.MarkSent(agency.ID, q.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Approve(q.PublicToken, "", "1.2.3.4", "ua"); !errors.Is(err, signature.ErrEmptySignature) {
		t.Fatalf("empty: expected ErrEmptySignature, got %v", err)
	}
	if _, err := svc.Approve(q.PublicToken, "data:text/plain;base64,aGk=", "1.2.3.4", "ua"); !errors.Is(err, signature.ErrInvalidSignature) {
		t.Fatalf("garbage: expected ErrInvalidSignature, got %v", err)
	}
	reloaded, _ := svc.Get(agency.ID, q.ID)
	if reloaded.Status != models.QuoteStatusSent {
		t.Fatalf("status moved without signature: %s", reloaded.Status)
	}
}

func TestExpiredQuotePolicy(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, _ := seedQuoteFixtures(t, db)
	svc, _ := newTestService(db)

	q, _ := svc.Create(agency.ID, validInput(client.ID))
	if _, err := svc.MarkSent(agency.ID, q.ID); err != nil {
		t.Fatal(err)
	}

	// jump the clock past the validity date
	svc.Now = func() time.Time { return time.Now().AddDate(0, 2, 0) }

	viewed, err := svc.PublicView(q.PublicToken)
	if err != nil {
		t.Fatalf("view of expired quote must succeed: %v", err)
	}
	if svc.DisplayStatusNow(viewed) != models.QuoteStatusExpired {
		t.Fatalf("display status = %s, want expired", svc.DisplayStatusNow(viewed))
	}

	if _, err := svc.Approve(q.PublicToken, drawnSignature(t), "1.2.3.4", "ua"); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	// declining a lapsed offer stays legal
	if _, err := svc.Reject(q.PublicToken); err != nil {
		t.Fatalf("reject expired: %v", err)
	}
}

func TestPublicViewTracking(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, _ := seedQuoteFixtures(t, db)
	svc, _ := newTestService(db)

	q, _ := svc.Create(agency.ID, validInput(client.ID))

	// drafts are invisible publicly
	if _, err := svc.PublicView(q.PublicToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("draft view: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.MarkSent(agency.ID, q.ID); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.PublicView(q.PublicToken); err != nil {
			t.Fatalf("view %d: %v", i, err)
		}
	}
	reloaded, _ := svc.Get(agency.ID, q.ID)
	if reloaded.ViewCount != 3 {
		t.Fatalf("view count = %d, want 3", reloaded.ViewCount)
	}
	if reloaded.FirstViewedAt == nil || reloaded.LastViewedAt == nil {
		t.Fatal("view timestamps missing")
	}
	if reloaded.Status != models.QuoteStatusSent {
		t.Fatalf("viewing changed status to %s", reloaded.Status)
	}

	// unknown and malformed tokens are indistinguishable
	if _, err := svc.PublicView("b3b9c6de-0000-4000-8000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("absent token: %v", err)
	}
	if _, err := svc.PublicView("../../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("malformed token: %v", err)
	}
}

func TestRenderPDFForQuote(t *testing.T) {
	db := setupQuoteTestDB(t)
	agency, client, _ := seedQuoteFixtures(t, db)
	svc, _ := newTestService(db)

	q, _ := svc.Create(agency.ID, validInput(client.ID))
	data, got, err := svc.RenderPDF(agency.ID, q.ID)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(data) == 0 || got.ID != q.ID {
		t.Fatalf("bad render result: %d bytes", len(data))
	}
}
