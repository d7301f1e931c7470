package mysql

const upsertSegmentSQL = `
INSERT INTO segments
  (id, name, effective_margin, additional_markup, display_discount_percent, is_cug)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name                     = VALUES(name),
  effective_margin         = VALUES(effective_margin),
  additional_markup        = VALUES(additional_markup),
  display_discount_percent = VALUES(display_discount_percent),
  is_cug                   = VALUES(is_cug),
  updated_at               = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getSegmentSQL = `
SELECT id, name, effective_margin, additional_markup, display_discount_percent, is_cug
FROM segments
WHERE id = ?
`

const listSegmentsSQL = `
SELECT id, name, effective_margin, additional_markup, display_discount_percent, is_cug
FROM segments
ORDER BY id
`

const seedSegmentSQL = `
INSERT IGNORE INTO segments
  (id, name, effective_margin, additional_markup, display_discount_percent, is_cug)
VALUES
  (?, ?, ?, ?, ?, ?)
`
