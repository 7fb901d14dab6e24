package mcpserver

// HeaderFormatContract describes the document header and index entry format
// that LLM consumers should preserve when editing corpus documents.
const HeaderFormatContract = `# docstamp Header Contract

Every Markdown document under ` + "`" + `Context/` + "`" + ` carries a two-line header within its
first 30 lines. The bump tool maintains it; editors should leave it in place.

## Header

` + "```" + `markdown
Version: 7
LastUpdated: 2026-01-17T16:23:11-06:00
` + "```" + `

## Rules

1. **Version** is a non-negative integer on its own line (` + "`" + `Version: <n>` + "`" + `). It only
   ever increases, by exactly one per bump.
2. **LastUpdated** is either a date (` + "`" + `YYYY-MM-DD` + "`" + `) or an ISO-8601 datetime with a
   numeric UTC offset, second precision.
3. The first matching line of each field wins; later occurrences are ordinary text.
4. A document that is missing either field gets a fresh block (` + "`" + `Version` + "`" + `,
   ` + "`" + `LastUpdated` + "`" + `, blank line) inserted at the top.
5. A document whose first non-blank line is ` + "`" + `CHATGPT_CONTEXT_INDEX_CANONICAL` + "`" + ` keeps that
   marker (and the blank line after it) above the header.
6. A document is stale when its modification time is more than the configured margin
   (default 2 seconds) newer than LastUpdated. After a bump the modification time is set
   to the LastUpdated instant.
7. Line endings, indentation and every line outside the header are preserved byte for byte.

## Index document

` + "`" + `Context/System/Context_Index.md` + "`" + ` lists one entry per document:

` + "```" + `markdown
CHATGPT_CONTEXT_INDEX_CANONICAL

Version: 12
LastUpdated: 2026-01-17

- DocID: guide
  FilePath: Context/System/Guide.md
  Owns: operating rules, tone
` + "```" + `

- DocIDs are unique.
- Every entry has a FilePath; FilePaths are unique across entries.
- Every entry has an ` + "`" + `Owns:` + "`" + ` line.
`
