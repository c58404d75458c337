// Package auth gates the stream endpoints behind a credential check.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (no credential it understands). When every
// authenticator abstains the request carries no usable credential and is
// rejected with ErrMissingCredential, unless the chain allows anonymous
// access.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from the
// dispatcher. The middleware injects the caller identity into the request
// context.
package auth
