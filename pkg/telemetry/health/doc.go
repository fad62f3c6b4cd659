// Package health runs component checks for the doctor command and the
// /healthz and /readyz routes of the metrics listener.
//
//	checker := health.New(5 * time.Second)
//	checker.Register("store", health.StoreCheck(st))
//	checker.Register("credentials", health.CredentialsCheck(creds))
//	checker.Register("nodes", health.ActiveNodeCheck(registry))
//	report := checker.Run(ctx)
package health
