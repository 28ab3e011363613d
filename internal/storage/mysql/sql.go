package mysql

const insertHotelSQL = `
INSERT INTO hotels (name, city, address, description)
VALUES (?, ?, ?, ?)
`

const updateHotelSQL = `
UPDATE hotels
SET name = ?, city = ?, address = ?, description = ?
WHERE id = ?
`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

// LOWER on both sides keeps the check case-insensitive even if the column
// collation is ever switched to a case-sensitive one.
const existsByNameSQL = `
SELECT EXISTS(
  SELECT 1 FROM hotels WHERE LOWER(name) = LOWER(?) AND id <> ?
)
`

const getHotelSQL = `
SELECT id, name, city, address, description
FROM hotels
WHERE id = ?
`

const listHotelsSQL = `
SELECT id, name, city, address, description
FROM hotels
ORDER BY id
`

const getImagesSQL = `
SELECT image_url
FROM hotel_images
WHERE hotel_id = ?
ORDER BY position
`

const listImagesSQL = `
SELECT hotel_id, image_url
FROM hotel_images
ORDER BY hotel_id, position
`

const deleteImagesSQL = `DELETE FROM hotel_images WHERE hotel_id = ?`

// Bulk insert; value groups are appended per row.
const insertImagesPrefix = `INSERT INTO hotel_images (hotel_id, position, image_url) VALUES `
