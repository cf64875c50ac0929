// Package osv provides an HTTP client for the OSV vulnerability database.
//
// Two endpoints are used. POST /v1/querybatch maps package versions to
// vulnerability IDs; a result whose NextPageToken is set must be re-queried
// with that token to receive the remaining IDs. GET /v1/vulns/{id} returns
// the full record, decoded into the ossf/osv-schema protobuf binding.
package osv
