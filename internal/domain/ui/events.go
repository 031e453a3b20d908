package ui

const SliceName = "ui"

const (
	ActionShowToastMessage = "ui/showToastMessage"
	ActionHideToast        = "ui/hideToast"
)

// Toast statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Toast struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
