package view

import (
	"os"
	"testing"

	"github.com/fatih/color"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/api"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/api/apitest"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/internal/domain"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/httpclient"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/logger"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type staticToken string

func (t staticToken) Token() string { return string(t) }

// confirmer answers every prompt with answer and records the prompts.
type confirmer struct {
	answer  bool
	prompts []string
}

func (c *confirmer) Confirm(prompt string) bool {
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

type fixture struct {
	srv      *apitest.Server
	adminID  domain.ID
	ownerID  domain.ID
	userID   domain.ID
	storeID  domain.ID
	notes    *Recorder
	confirms *confirmer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := apitest.New(t)
	f := &fixture{srv: srv, notes: &Recorder{}, confirms: &confirmer{answer: true}}
	f.adminID = srv.AddUser(apitest.UserSeed{Name: "System Administrator Account", Email: "admin@x.com", Password: "Admin@123", Role: domain.RoleAdmin})
	f.ownerID = srv.AddUser(apitest.UserSeed{Name: "Primary Store Owner Person", Email: "owner@x.com", Password: "Owner@123", Role: domain.RoleOwner})
	f.userID = srv.AddUser(apitest.UserSeed{Name: "Regular Customer Account Name", Email: "user@x.com", Password: "User@1234", Role: domain.RoleUser})
	f.storeID = srv.AddStore(apitest.StoreSeed{Name: "Corner Grocery and Provisions", Address: "12 Market Street", OwnerID: f.ownerID})
	return f
}

func (f *fixture) client(id domain.ID) *api.Client {
	doer := httpclient.NewWithHTTPClient(f.srv.Client(), httpclient.DefaultConfig())
	return api.NewClient(f.srv.URL, doer, staticToken(f.srv.TokenFor(id)), logger.Discard())
}

func (f *fixture) adminView() *AdminView {
	return NewAdminView(f.client(f.adminID), f.notes, f.confirms, logger.Discard())
}

func (f *fixture) userView() *UserView {
	return NewUserView(f.client(f.userID), f.notes, logger.Discard())
}

func (f *fixture) ownerView() *OwnerView {
	return NewOwnerView(f.client(f.ownerID), logger.Discard())
}
