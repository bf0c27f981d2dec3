// Package authclient provides the client-side session core used by admin
// dashboards talking to a go-auth backed API: credential storage, bearer
// token transport, session lifecycle, and route gating.
//
// Session lifecycle:
//   - SessionManager owns the authenticated-identity state machine. It
//     restores a persisted credential on startup, exchanges email/password
//     for a token through the shared Client, and exposes the read surface
//     (IsAuthenticated, IsLoading, Identity, Err) pages consume.
//   - Startup settles exactly once. Consumers that gate rendering should
//     wait on Settled before making their first decision.
//
// Transport:
//   - Transport is an http.RoundTripper that attaches the stored access
//     token to every outgoing request and, on a 401, clears the credential
//     store and notifies a SessionInvalidatedHandler. The rejected response
//     still reaches the caller so page-local handling can react.
//
// Credential storage:
//   - CredentialStore is a narrow save/load/clear interface. MemoryStore,
//     FileStore, and BunStore (SQLite via Bun) ship with the package; swap
//     implementations without touching SessionManager logic.
//
// Route gating:
//   - RouteGuard decides whether a navigation target may render from the
//     session state and a fixed allow-list of public paths. Protected
//     adapts the guard into go-router middleware for server-embedded
//     dashboards.
package authclient
