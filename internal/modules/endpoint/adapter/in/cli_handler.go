package in

import (
	"context"

	"airpulse/internal/modules/endpoint/dto"
	endpointin "airpulse/internal/modules/endpoint/port/in"
)

type CLIHandler struct {
	usecase endpointin.Usecase
}

func NewCLIHandler(usecase endpointin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Resolve(ctx context.Context) dto.EndpointOutput {
	return h.usecase.Resolve(ctx)
}
