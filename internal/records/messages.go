package records

// User-facing notices shared by every front end.
const (
	CreatedMessage     = "Successfully submit new data"
	UpdatedMessage     = "Successfully update data"
	FailureTitle       = "Uh oh! Something went wrong."
	FailureDescription = "There was a problem with your request."
	LoadingMessage     = "Please wait"
)
