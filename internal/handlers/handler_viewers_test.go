package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"testing"
	"time"

	"batch-release/internal/config"
	"batch-release/internal/data"
	"batch-release/internal/middlewares"
	"batch-release/internal/models"
	"batch-release/internal/records"
	"batch-release/internal/region"
	"batch-release/internal/release"
	"batch-release/internal/testutil"
	"batch-release/internal/viewer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, d models.CertificateData) ([]byte, error) {
	exception := d.Exception != nil && *d.Exception
	signedBy := ""
	if d.Signature != nil {
		signedBy = d.Signature.SignedBy
	}
	return []byte(fmt.Sprintf("%%PDF-1.7 batch=%s exception=%v signedBy=%s", d.Record.BatchNumber, exception, signedBy)), nil
}

type ticketPrinter struct {
	tickets *viewer.PrintTickets
}

func (p ticketPrinter) Print(ctx context.Context, handle string) (string, error) {
	return p.tickets.Issue(ctx, handle)
}

type viewerEnv struct {
	registry *release.Registry
	store    *viewer.Store
	signer   *viewer.URLSigner
	tickets  *viewer.PrintTickets
}

func newViewerEnv(t *testing.T) *viewerEnv {
	t.Helper()

	store := viewer.NewStore(nil)
	cache := data.NewMemCache(&config.Config{}, slog.Default())
	tickets := viewer.NewPrintTickets(store, cache, time.Minute, slog.Default())

	registry := release.NewRegistry(release.Deps{
		Renderers: release.RendererFactoryFunc(func(ctx context.Context, record models.CertificateRecord) (release.Renderer, error) {
			return stubRenderer{}, nil
		}),
		Regions:    region.NewResolver(nil, time.Second, nil),
		Printer:    ticketPrinter{tickets: tickets},
		Publishers: func() release.DocumentPublisher { return viewer.NewSlot(store) },
	})
	t.Cleanup(registry.CloseAll)

	return &viewerEnv{
		registry: registry,
		store:    store,
		signer:   viewer.NewURLSigner(strings.Repeat("k", 32), time.Minute),
		tickets:  tickets,
	}
}

func (e *viewerEnv) context(t *testing.T, method, target string) *testutil.TestContext {
	tc := testutil.NewTestContextWithURL(t, method, target)
	tc.WithViewers(e.registry)
	tc.AppContext.Documents = e.store
	tc.AppContext.DocumentURLs = e.signer
	tc.AppContext.PrintTickets = e.tickets
	return tc
}

func (e *viewerEnv) open(t *testing.T, owner *models.User, record models.CertificateRecord) *release.Session {
	t.Helper()
	session, err := e.registry.Create(context.Background(), "user:"+owner.Iss+"|"+owner.Sub, record)
	require.NoError(t, err)
	return session
}

func qaUser() *models.User {
	return &models.User{Iss: "https://idp.example.com", Sub: "qa-1", DisplayName: "Ada QA", Email: "ada@example.com"}
}

func indiaRecord() models.CertificateRecord {
	return models.CertificateRecord{BatchNumber: "B-1001", PatientName: "Jane Doe", Country: "IN"}
}

func decodeViewer(t *testing.T, tc *testutil.TestContext) ViewerResponse {
	t.Helper()
	var resp ViewerResponse
	require.NoError(t, json.Unmarshal(tc.Response.Body.Bytes(), &resp))
	return resp
}

func decodePrint(t *testing.T, tc *testutil.TestContext) PrintResponse {
	t.Helper()
	var resp PrintResponse
	require.NoError(t, json.Unmarshal(tc.Response.Body.Bytes(), &resp))
	return resp
}

func TestPOSTViewerHandler_OpensUnsignedViewer(t *testing.T) {
	env := newViewerEnv(t)
	user := qaUser()

	tc := env.context(t, "POST", "/api/v1/viewers")
	tc.WithPrincipal(user)
	tc.WithJSONBody(t, CreateViewerRequest{BatchNumber: " B-1001 "})
	tc.MockRecords.EXPECT().FetchRecord(gomock.Any(), "B-1001").Return(indiaRecord(), nil)

	tc.CallHandler(POSTViewerHandler)

	tc.AssertStatus(t, http.StatusCreated)
	resp := decodeViewer(t, tc)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "B-1001", resp.BatchNumber)
	assert.Equal(t, models.StateUnsigned, resp.State)
	assert.False(t, resp.Exception)
	assert.False(t, resp.CanPrint)
	assert.Nil(t, resp.Signature)
	assert.True(t, strings.HasPrefix(resp.DocumentURL, "/api/v1/documents/"))

	session, err := env.registry.Get(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "user:https://idp.example.com|qa-1", session.Owner())
	tc.AssertLogsContainMessage(t, slog.LevelInfo, "viewer opened")
}

func TestPOSTViewerHandler_AnonymousSessionOwner(t *testing.T) {
	env := newViewerEnv(t)

	tc := env.context(t, "POST", "/api/v1/viewers")
	tc.WithJSONBody(t, CreateViewerRequest{BatchNumber: "B-1001"})
	tc.MockRecords.EXPECT().FetchRecord(gomock.Any(), "B-1001").Return(indiaRecord(), nil)
	tc.MockSession.EXPECT().ViewerOwner(tc.AppContext).Return("session:abc")

	tc.CallHandler(POSTViewerHandler)

	tc.AssertStatus(t, http.StatusCreated)
	session, err := env.registry.Get(decodeViewer(t, tc).ID)
	require.NoError(t, err)
	assert.Equal(t, "session:abc", session.Owner())
}

func TestPOSTViewerHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		fetchErr   error
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing batch number",
			body:       CreateViewerRequest{},
			wantStatus: http.StatusBadRequest,
			wantError:  "batchNumber is required",
		},
		{
			name:       "unknown batch",
			body:       CreateViewerRequest{BatchNumber: "B-404"},
			fetchErr:   &records.RecordFetchError{BatchNumber: "B-404", Err: records.ErrRecordNotFound},
			wantStatus: http.StatusNotFound,
			wantError:  "batch B-404 not found",
		},
		{
			name:       "tracking api down",
			body:       CreateViewerRequest{BatchNumber: "B-404"},
			fetchErr:   &records.RecordFetchError{BatchNumber: "B-404", StatusCode: 503, Err: fmt.Errorf("unavailable")},
			wantStatus: http.StatusBadGateway,
			wantError:  "tracking service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newViewerEnv(t)

			tc := env.context(t, "POST", "/api/v1/viewers")
			tc.WithPrincipal(qaUser())
			tc.WithJSONBody(t, tt.body)
			if tt.fetchErr != nil {
				tc.MockRecords.EXPECT().FetchRecord(gomock.Any(), "B-404").Return(models.CertificateRecord{}, tt.fetchErr)
			}

			tc.CallHandler(POSTViewerHandler)

			tc.AssertStatus(t, tt.wantStatus)
			tc.AssertJSONField(t, "error", tt.wantError)
			assert.Equal(t, 0, env.registry.Len())
		})
	}
}

func TestGETViewerHandler_HidesOtherOwners(t *testing.T) {
	env := newViewerEnv(t)
	session := env.open(t, qaUser(), indiaRecord())

	tc := env.context(t, "GET", "/api/v1/viewers/"+session.ID())
	tc.WithURLParam("id", session.ID())
	tc.WithPrincipal(&models.User{Iss: "https://idp.example.com", Sub: "someone-else"})

	tc.CallHandler(GETViewerHandler)

	tc.AssertStatus(t, http.StatusNotFound)
	tc.AssertJSONField(t, "error", release.ErrViewerNotFound.Error())
}

func TestPUTViewerExceptionHandler(t *testing.T) {
	env := newViewerEnv(t)
	user := qaUser()
	session := env.open(t, user, indiaRecord())

	tc := env.context(t, "PUT", "/api/v1/viewers/"+session.ID()+"/exception")
	tc.WithURLParam("id", session.ID())
	tc.WithPrincipal(user)
	tc.WithJSONBody(t, map[string]bool{"exception": true})

	tc.CallHandler(PUTViewerExceptionHandler)

	tc.AssertStatus(t, http.StatusOK)
	resp := decodeViewer(t, tc)
	assert.True(t, resp.Exception)

	doc, err := env.store.Open(session.Snapshot().Handle)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "exception=true")
}

func TestPUTViewerExceptionHandler_RequiresFlag(t *testing.T) {
	env := newViewerEnv(t)
	user := qaUser()
	session := env.open(t, user, indiaRecord())

	tc := env.context(t, "PUT", "/api/v1/viewers/"+session.ID()+"/exception")
	tc.WithURLParam("id", session.ID())
	tc.WithPrincipal(user)
	tc.WithJSONBody(t, map[string]string{"other": "value"})

	tc.CallHandler(PUTViewerExceptionHandler)

	tc.AssertStatus(t, http.StatusBadRequest)
}

func TestPOSTViewerSignHandler(t *testing.T) {
	env := newViewerEnv(t)
	user := qaUser()
	session := env.open(t, user, indiaRecord())

	tc := env.context(t, "POST", "/api/v1/viewers/"+session.ID()+"/sign")
	tc.WithURLParam("id", session.ID())
	tc.WithPrincipal(user)

	tc.CallHandler(POSTViewerSignHandler)

	tc.AssertStatus(t, http.StatusOK)
	resp := decodeViewer(t, tc)
	assert.Equal(t, models.StateSigned, resp.State)
	assert.True(t, resp.CanPrint)
	require.NotNil(t, resp.Signature)
	assert.Equal(t, "Ada QA", resp.Signature.SignedBy)
	tc.AssertLogsContainMessage(t, slog.LevelInfo, "certificate signed")

	again := env.context(t, "POST", "/api/v1/viewers/"+session.ID()+"/sign")
	again.WithURLParam("id", session.ID())
	again.WithPrincipal(user)

	again.CallHandler(POSTViewerSignHandler)

	again.AssertStatus(t, http.StatusConflict)
	again.AssertJSONField(t, "error", release.ErrAlreadySigned.Error())
}

func TestPOSTViewerSignHandler_RequiresPrincipal(t *testing.T) {
	env := newViewerEnv(t)
	session, err := env.registry.Create(context.Background(), "session:abc", indiaRecord())
	require.NoError(t, err)

	tc := env.context(t, "POST", "/api/v1/viewers/"+session.ID()+"/sign")
	tc.WithURLParam("id", session.ID())
	tc.MockSession.EXPECT().ViewerOwner(tc.AppContext).Return("session:abc")

	tc.CallHandler(POSTViewerSignHandler)

	tc.AssertStatus(t, http.StatusUnauthorized)
	assert.Equal(t, models.StateUnsigned, session.Snapshot().State)
}

func signedViewer(t *testing.T, env *viewerEnv, user *models.User, record models.CertificateRecord) *release.Session {
	t.Helper()
	session := env.open(t, user, record)
	_, err := session.Sign(context.Background(), user.SignerName())
	require.NoError(t, err)
	return session
}

func printContext(t *testing.T, env *viewerEnv, user *models.User, session *release.Session, body PrintRequest) *testutil.TestContext {
	tc := env.context(t, "POST", "/api/v1/viewers/"+session.ID()+"/print")
	tc.WithURLParam("id", session.ID())
	tc.WithPrincipal(user)
	tc.WithJSONBody(t, body)
	return tc
}

func TestPOSTViewerPrintHandler_Unsigned(t *testing.T) {
	env := newViewerEnv(t)
	user := qaUser()
	session := env.open(t, user, indiaRecord())

	tc := printContext(t, env, user, session, PrintRequest{Region: "IN"})
	tc.CallHandler(POSTViewerPrintHandler)

	tc.AssertStatus(t, http.StatusConflict)
	tc.AssertJSONField(t, "error", release.ErrNotSigned.Error())
}

func TestPOSTViewerPrintHandler_RegionChecks(t *testing.T) {
	lat, lon := 40.71, -74.0

	tests := []struct {
		name       string
		body       PrintRequest
		wantStatus int
		wantNotice string
		wantReason string
	}{
		{
			name:       "matching region prints",
			body:       PrintRequest{Region: "in"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "other country cannot print",
			body:       PrintRequest{Region: "US"},
			wantStatus: http.StatusForbidden,
			wantNotice: release.NoticeCannotPrint,
		},
		{
			name:       "permission denied",
			body:       PrintRequest{Error: "permission_denied"},
			wantStatus: http.StatusForbidden,
			wantNotice: release.NoticeCannotPrint,
			wantReason: "location permission denied",
		},
		{
			name:       "coordinates without a geocoder",
			body:       PrintRequest{Latitude: &lat, Longitude: &lon},
			wantStatus: http.StatusForbidden,
			wantNotice: release.NoticeCannotPrint,
			wantReason: "reverse geocoding disabled",
		},
		{
			name:       "empty body",
			body:       PrintRequest{},
			wantStatus: http.StatusForbidden,
			wantNotice: release.NoticeCannotPrint,
			wantReason: "no location provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newViewerEnv(t)
			user := qaUser()
			session := signedViewer(t, env, user, indiaRecord())

			tc := printContext(t, env, user, session, tt.body)
			tc.CallHandler(POSTViewerPrintHandler)

			tc.AssertStatus(t, tt.wantStatus)
			resp := decodePrint(t, tc)
			assert.Equal(t, tt.wantStatus == http.StatusOK, resp.Printed)
			assert.Equal(t, tt.wantNotice, resp.Notice)
			if tt.wantReason != "" {
				require.NotNil(t, resp.Region)
				assert.Equal(t, tt.wantReason, resp.Region.Reason)
			}
			if resp.Printed {
				assert.True(t, strings.HasPrefix(resp.PrintURL, "/api/v1/print/"))
				assert.Equal(t, 60, resp.ExpiresIn)
			} else {
				assert.Equal(t, 0, env.tickets.Outstanding())
			}
		})
	}
}

func TestPrintFlow_TicketIsSingleUse(t *testing.T) {
	env := newViewerEnv(t)
	user := qaUser()
	session := signedViewer(t, env, user, indiaRecord())

	tc := printContext(t, env, user, session, PrintRequest{Region: "IN"})
	tc.CallHandler(POSTViewerPrintHandler)
	tc.AssertStatus(t, http.StatusOK)
	token := strings.TrimPrefix(decodePrint(t, tc).PrintURL, "/api/v1/print/")

	first := env.context(t, "GET", "/api/v1/print/"+token)
	first.WithURLParam("token", token)
	first.CallHandler(GETPrintHandler)

	first.AssertStatus(t, http.StatusOK)
	first.AssertContentType(t, "application/pdf")
	assert.Contains(t, first.GetResponseBody(), "signedBy=Ada QA")

	second := env.context(t, "GET", "/api/v1/print/"+token)
	second.WithURLParam("token", token)
	second.CallHandler(GETPrintHandler)

	second.AssertStatus(t, http.StatusNotFound)
}

func TestDocumentFlow(t *testing.T) {
	env := newViewerEnv(t)
	user := qaUser()
	session := env.open(t, user, indiaRecord())

	resp, err := newViewerResponse(&middlewares.AppContext{DocumentURLs: env.signer}, session.Snapshot())
	require.NoError(t, err)

	u, err := url.Parse(resp.DocumentURL)
	require.NoError(t, err)
	handle := path.Base(u.Path)
	token := u.Query().Get("token")

	tc := env.context(t, "GET", resp.DocumentURL)
	tc.WithURLParam("handle", handle)
	tc.CallHandler(GETDocumentHandler)

	tc.AssertStatus(t, http.StatusOK)
	tc.AssertContentType(t, "application/pdf")
	assert.Equal(t, "inline", tc.Response.Header().Get("Content-Disposition"))
	assert.Contains(t, tc.GetResponseBody(), "batch=B-1001")

	forged := env.context(t, "GET", "/api/v1/documents/"+handle+"?token=forged")
	forged.WithURLParam("handle", handle)
	forged.CallHandler(GETDocumentHandler)
	forged.AssertStatus(t, http.StatusForbidden)

	del := env.context(t, "DELETE", "/api/v1/viewers/"+session.ID())
	del.WithURLParam("id", session.ID())
	del.WithPrincipal(user)
	del.CallHandler(DELETEViewerHandler)
	del.AssertStatus(t, http.StatusOK)

	_, err = env.registry.Get(session.ID())
	assert.ErrorIs(t, err, release.ErrViewerNotFound)

	gone := env.context(t, "GET", "/api/v1/documents/"+handle+"?token="+url.QueryEscape(token))
	gone.WithURLParam("handle", handle)
	gone.CallHandler(GETDocumentHandler)
	gone.AssertStatus(t, http.StatusNotFound)
}

func TestDELETEViewerHandler_UnknownViewer(t *testing.T) {
	env := newViewerEnv(t)

	tc := env.context(t, "DELETE", "/api/v1/viewers/missing")
	tc.WithURLParam("id", "missing")
	tc.WithPrincipal(qaUser())

	tc.CallHandler(DELETEViewerHandler)

	tc.AssertStatus(t, http.StatusNotFound)
}
