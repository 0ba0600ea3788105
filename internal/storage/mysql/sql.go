package mysql

const insertDestinationSQL = `
INSERT INTO destinations (name, description)
VALUES (?, ?)
`

const getDestinationSQL = `
SELECT id, name, COALESCE(description, '')
FROM destinations
WHERE id = ?
`

const listDestinationsSQL = `
SELECT id, name, COALESCE(description, '')
FROM destinations
ORDER BY id
`

// reviews go first so the statement pair is correct even without the FK cascade
const deleteDestinationReviewsSQL = `DELETE FROM reviews WHERE destination_id = ?`
const deleteDestinationSQL = `DELETE FROM destinations WHERE id = ?`

const insertReviewSQL = `
INSERT INTO reviews (destination_id, content, sentiment_score, created_at)
VALUES (?, ?, ?, ?)
`

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`

// Newest first; served by idx_reviews_destination (destination_id, id).
const listReviewsByDestinationSQL = `
SELECT id, destination_id, content, sentiment_score, created_at
FROM reviews
WHERE destination_id = ?
ORDER BY id DESC
`
