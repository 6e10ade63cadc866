// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /api/auth/signup: registers an account. Body: {"username","email","password"}.
//   - POST /api/auth/login: issues a session token. Body: {"email","password"}. Response:
//     {"token","expires_at","user"} with the token also surfaced via the
//     `X-Session-Token` header and a `session_token` cookie.
//   - POST /api/auth/logout: revokes the current session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content and clears the cookie.
//   - GET /api/rooms?capacity=&available=: lists the room catalog, optionally filtered
//     by minimum capacity and availability. GET /api/rooms/{id} fetches one room.
//   - POST /api/rooms/{id}/check-availability: reports whether a slot is free. Body:
//     {"date","start_time","end_time"}; never mutates state.
//   - POST /api/bookings: creates a reservation for the authenticated user. Returns
//     409 when the slot overlaps an active booking.
//   - GET /api/bookings/my-bookings: lists the caller's bookings, newest slot first.
//   - GET /api/bookings: lists every booking.
//   - DELETE /api/bookings/{id}: cancels a booking owned by the caller. A booking
//     owned by someone else is indistinguishable from a missing one (404).
//
// Everything under /api/rooms and /api/bookings requires a valid session; the
// /api/auth endpoints are public. Request/response DTOs live alongside their
// respective handlers so tests and documentation share the same ground truth.
package http
