// Package http provides HTTP handlers and middleware for the field-service API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"} with an
//     optional "org_id" for multi-organization deployments. The token is also
//     surfaced via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted from
//     the Authorization header or session cookie. Returns 204 No Content and
//     clears the cookie.
//   - GET /clients, POST /clients, GET/PUT/DELETE /clients/{id}: client account
//     management exchanging the `clientDTO` payload defined in client_handler.go.
//   - GET /clients/{id}/locations, POST /clients/{id}/locations: serviceable
//     locations attached to a client.
//   - GET /subscriptions, POST /subscriptions, GET/PUT /subscriptions/{id}:
//     recurring-service agreements exchanging the `subscriptionDTO` payload.
//     Mutations that touch the schedule regenerate the forward job window and
//     report the count via "jobs_generated".
//   - POST /subscriptions/{id}/pause|resume|cancel: lifecycle transitions.
//     POST /subscriptions/{id}/regenerate: administrator-only forced top-up
//     with an optional {"horizon_days"} body.
//   - GET /jobs, POST /jobs, GET /jobs/{id}: service visits. Listing accepts
//     subscription_id, tech_id, status (comma separated), from, and to query
//     parameters; dates use YYYY-MM-DD.
//   - POST /jobs/{id}/assign|start|complete|skip|cancel: visit workflow. Skip
//     requires a {"reason"} body.
//   - POST /quotes: the public lead form, rate limited per client address and
//     requiring no session. GET /quotes, PUT /quotes/{id}/status, and
//     POST /quotes/{id}/convert are staff endpoints.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
