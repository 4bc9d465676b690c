package server

import (
	"git.appkode.ru/pub/go/failure"

	"auto_crm/internal/domain"
	"auto_crm/pkg/errcodes"
)

// mapDomainError переводит доменные ошибки в транспортные категории failure,
// чтобы reply.Error отдал корректный HTTP статус.
func mapDomainError(err error) error {
	code, ok := domain.GetCode(err)
	if !ok {
		return err
	}

	switch code {
	case errcodes.DealNotFound:
		return failure.NewNotFoundError(
			err.Error(),
			failure.WithCode(code),
			failure.WithDescription("Deal not found"),
		)
	case errcodes.StorageConflict:
		return failure.NewConflictError(
			err.Error(),
			failure.WithCode(code),
			failure.WithDescription("Deal was modified concurrently, retry the request"),
		)
	case errcodes.InvalidStatusTransition:
		return failure.NewUnprocessableEntityError(
			err.Error(),
			failure.WithCode(code),
			failure.WithDescription("This stage change is not allowed"),
		)
	case errcodes.InvalidDealID, errcodes.InvalidDealStatus, errcodes.InvalidVehiclePrice:
		return failure.NewInvalidArgumentError(
			err.Error(),
			failure.WithCode(code),
			failure.WithDescription("Invalid request data"),
		)
	}

	return err
}
