package services

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/huangang/venturelink/internal/models"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	svc      *TimelyReportService
	store    *LocalStore
	rec      *recordingNotifier
	founder  *models.User
	startup  *models.Startup
	investor *models.Investor
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	db := newTestDB(t)
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	rec := &recordingNotifier{}
	svc := NewTimelyReportService(db, store, NewPDFRenderer("₹"), rec, testTemplates(), NewStartupActivityService(db))

	founder, startup := createFounder(t, db, "founder@acme.io", "Acme")
	_, investor := createInvestor(t, db, "vc@fund.com", "Fund One")
	connect(t, db, startup.ID, investor.ID, models.MappingActive)
	return &reportFixture{svc: svc, store: store, rec: rec, founder: founder, startup: startup, investor: investor}
}

func TestPDFRenderer_ProducesPDF(t *testing.T) {
	out, err := NewPDFRenderer("₹").RenderTimelyReport(&models.TimelyReport{
		Title:           "Q1 update",
		ReportingPeriod: "Jan-Mar",
		MonthlyRevenue:  12000.5,
		KeyAchievements: "Closed two enterprise deals",
		Attachments:     []models.FileRef{{FileName: "deck.pdf"}},
	}, "Acme")
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestCreateReport_PublishesToInvestors(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	report, err := f.svc.Create(ctx, f.founder.ID, &TimelyReportRequest{
		Title:          "  March update ",
		MonthlyRevenue: 5000,
		InvestorIDs:    []string{f.investor.ID, f.investor.ID, "unknown-investor"},
	}, []UploadedFile{{Name: "metrics.csv", Data: []byte("a,b\n1,2\n")}})
	require.NoError(t, err)
	require.Equal(t, "March update", report.Title)
	require.Equal(t, []string{f.investor.ID, "unknown-investor"}, report.InvestorIDs)
	require.Len(t, report.Attachments, 1)
	require.NotNil(t, report.ReportPDF)
	require.Contains(t, report.ReportPDF.FileName, "Acme_March_update.pdf")

	data, err := f.store.Open(ctx, report.ReportPDF.FilePath)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	notes := f.rec.to("vc@fund.com")
	require.Len(t, notes, 1)
	require.Equal(t, KindTimelyReport, notes[0].Kind)
	require.Equal(t, "founder@acme.io", notes[0].ReplyTo)
	require.Equal(t, report.ReportPDF.FilePath, notes[0].AttachmentPath)
	require.Len(t, f.rec.sent(), 1, "unknown investors are skipped")

	var activity models.StartupActivity
	require.NoError(t, f.svc.db.First(&activity, "startup_id = ?", f.startup.ID).Error)
	require.Equal(t, "Published report: March update", activity.Message)
}

func TestCreateReport_Validation(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.founder.ID, &TimelyReportRequest{Title: "   "}, nil)
	requireAppError(t, err, http.StatusBadRequest, "Report title cannot be empty")

	_, err = f.svc.Create(ctx, "ghost", &TimelyReportRequest{Title: "x"}, nil)
	requireAppError(t, err, http.StatusNotFound, "Founder not found")
}

func TestDraftLifecycle(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetDraft(ctx, f.founder.ID)
	requireAppError(t, err, http.StatusNotFound, "No draft report found for this startup.")

	draft, err := f.svc.Create(ctx, f.founder.ID, &TimelyReportRequest{
		Title: "WIP", DraftReport: true, InvestorIDs: []string{f.investor.ID},
	}, nil)
	require.NoError(t, err)
	require.Empty(t, f.rec.sent(), "drafts are not mailed")

	_, err = f.svc.Create(ctx, f.founder.ID, &TimelyReportRequest{Title: "Another", DraftReport: true}, nil)
	requireAppError(t, err, http.StatusBadRequest, errDraftExists.Message)

	got, err := f.svc.GetDraft(ctx, f.founder.ID)
	require.NoError(t, err)
	require.Equal(t, draft.ID, got.ID)
	oldPDF := got.ReportPDF.FilePath

	published, err := f.svc.Update(ctx, f.founder.ID, draft.ID, &TimelyReportRequest{
		Title: "Final", InvestorIDs: []string{f.investor.ID},
	}, nil)
	require.NoError(t, err)
	require.False(t, published.DraftReport)
	require.Len(t, f.rec.to("vc@fund.com"), 1)

	_, err = f.store.Open(ctx, oldPDF)
	require.Error(t, err, "the replaced PDF is deleted")

	_, err = f.svc.GetDraft(ctx, f.founder.ID)
	requireAppError(t, err, http.StatusNotFound, "")

	// the single-draft slot is free again
	_, err = f.svc.Create(ctx, f.founder.ID, &TimelyReportRequest{Title: "Next", DraftReport: true}, nil)
	require.NoError(t, err)

	reports, err := f.svc.ListByFounder(ctx, f.founder.ID)
	require.NoError(t, err)
	require.Len(t, reports, 2)
}

func TestUpdateReport_Ownership(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	other, _ := createFounder(t, f.svc.db, "founder@beta.io", "Beta")

	report, err := f.svc.Create(ctx, f.founder.ID, &TimelyReportRequest{Title: "Mine", DraftReport: true}, nil)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, other.ID, report.ID, &TimelyReportRequest{Title: "Hijack"}, nil)
	requireAppError(t, err, http.StatusBadRequest, "You are not authorized to update this report.")

	_, err = f.svc.Update(ctx, f.founder.ID, "missing", &TimelyReportRequest{Title: "x"}, nil)
	requireAppError(t, err, http.StatusNotFound, "Timely report not found")
}
