// Package sec provides credential handling and session management for the
// phonebook web application.
//
// # Authentication
//
// Accounts authenticate with an identifier and password submitted over a
// login form. Passwords are validated against bcrypt hashes stored in the
// database; sessions are server-side rows keyed by an opaque token delivered
// in an HMAC-signed cookie.
//
// # Components
//
//   - [Authenticator]: registration, login, and logout against the user store
//   - [SessionManager]: session issue/resolve/destroy and the echo middleware
//     guarding protected routes
//   - [GetAuthenticatedUser], [SetAuthenticatedUser]: context accessors for
//     the authenticated identity
//   - [HashPassword], [ComparePassword]: bcrypt password hashing utilities
package sec
