package api

// Error texts returned to the browser client. Do not reword these; the
// front end matches on some of them.
const (
	msgInvalidBody       = "invalid request body"
	msgInvalidSheet      = "Invalid sheet name"
	msgMissingPeRe       = "Missing PE/RE column"
	msgPeReMissing       = "PE/RE column missing"
	msgNoWellsFmt        = "No wells found for PE/RE: %s in sheet: %s"
	msgNoWellData        = "No well data provided"
	msgNoWellColumn      = "'Well' column not found in headers"
	msgNoNewWellData     = "No new well data provided"
	msgNoEmptyRow        = "No empty row found"
	msgWellNotFound      = "Well not found"
	msgWellNameRequired  = "Well name is required"
	msgNoHistoryColumns  = "Well or Comments column not found"
	msgTooManyRequests   = "too many requests"
	msgInternalEncodeErr = "internal error"
)
