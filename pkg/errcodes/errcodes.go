package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	InvalidPaging       failure.ErrorCode = "InvalidPaging"

	// Коды модуля сделок
	DealNotFound            failure.ErrorCode = "DealNotFound"            // ID есть, но в базе нет
	InvalidDealID           failure.ErrorCode = "InvalidDealID"           // Пришёл мусор вместо ID
	InvalidDealStatus       failure.ErrorCode = "InvalidDealStatus"       // Статус вне закрытого набора
	InvalidStatusTransition failure.ErrorCode = "InvalidStatusTransition" // Переход не разрешён графом статусов
	StorageConflict         failure.ErrorCode = "StorageConflict"         // Версия записи устарела, второй писатель проигрывает
	InvalidVehiclePrice     failure.ErrorCode = "InvalidVehiclePrice"     // Отрицательная цена
	InvalidListFilter       failure.ErrorCode = "InvalidListFilter"
)
