// Package relay implements the HTTP client for the relay service's
// request/response contract. The relay itself is untrusted and out of scope;
// only its endpoints are consumed here.
package relay
