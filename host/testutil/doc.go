// Package testutil provides a test native host backed by an httptest
// upstream that records the requests it receives.
//
//	up := testutil.NewComponent(host.Config{}, nil)
//	if err := up.Start(ctx); err != nil {
//	    t.Fatal(err)
//	}
//	defer up.Stop(ctx)
//
//	adapter, _ := httpclient.New(up.Invoker(), httpclient.Config{})
//	resp, err := adapter.Do(ctx, &httpclient.Request{URL: up.URL("/echo")})
package testutil
