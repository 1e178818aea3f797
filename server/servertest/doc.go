// Package servertest runs a server.Server on an httptest.Server.
//
//	srv := servertest.NewComponent()
//	srv.Server().RegisterAPI(func() server.Adapter { return adapter })
//	testutil.T(t).Setup(srv)
//	resp, _ := http.Get(srv.BaseURL() + "/v1/identity")
package servertest
