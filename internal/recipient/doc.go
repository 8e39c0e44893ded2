// Package recipient implements the campaign recipient sync pipeline: it
// lists CSV exports in a Drive folder, matches each file to a persisted
// campaign by fuzzy file name, downloads and parses the recipient rows, and
// performs idempotent batched upserts against the campaign database.
//
// A single Run processes a bounded window of the folder under a wall-clock
// budget; callers resume by feeding the returned range end back in as the
// next start index. The coordinator keeps no state between calls.
package recipient
