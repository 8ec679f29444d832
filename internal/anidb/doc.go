// Package anidb implements catalog.Service over the AniDB UDP API.
//
// Requests are plain-text datagrams tagged so replies can be paired with
// the request that produced them; late replies to abandoned requests are
// dropped. The client paces itself with a token-bucket limiter because the
// server bans clients that send faster than it allows. Timeouts and busy
// replies are retried a bounded number of times. Everything else the server
// rejects is reported as a fatal catalog error.
package anidb
