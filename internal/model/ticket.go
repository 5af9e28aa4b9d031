package model

// Ticket is the record created when a seat is sold for a specific screening.
// Exactly one ticket occupies exactly one grid cell; it is owned by that cell
// and immutable after creation.
//
// Key is reproducible bit-for-bit by collaborators:
// `III:YYYYMMDD:HHmm:ROOMID:SEAT`, where III is the 3-character title
// initialism of the screened work.
type Ticket struct {
	Seat           string  // canonical seat label, e.g. "H7"
	Price          float64 // price charged for this seat
	PatronCategory string  // free-form classification, e.g. "Adulto"
	Key            string  // screening identifier plus seat
}
