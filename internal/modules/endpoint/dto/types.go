package dto

type EndpointOutput struct {
	BaseURL    string
	Source     string
	Probed     bool
	ProbeError string
}
