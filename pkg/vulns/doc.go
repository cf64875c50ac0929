// Package vulns enriches dependencies with OSV advisories.
//
// # Protocol
//
// [Enricher.Enrich] works in two phases against the OSV API:
//
//  1. ID discovery. Every main dependency and every transitive graph node
//     becomes one querybatch query. Results carrying a next_page_token are
//     re-posted with that token until no query has another page. Each
//     returned ID is attached to its dependency as a placeholder.
//  2. Detail fetch. Each unique ID is fetched once from /vulns/{id},
//     converted with [FromOSV], and swapped in for the placeholder on every
//     dependency that referenced it.
//
// # Severity
//
// [ScoreVector] applies CVSS v3 and v4 vectors to the go-cvss calculators
// and formats the base score with one decimal. Unparseable vectors score
// "unknown" rather than failing the record.
package vulns
