// Package identity provides the current user to the library.
//
// [AuthService] manages local accounts: passwords are hashed with bcrypt and stored through
// the user repository, and the active session is written to the key-value store under
// "auth_session" so it survives separate CLI invocations.
//
// Library code depends only on [Provider].
package identity
