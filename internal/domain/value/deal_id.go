package value

import (
	"fmt"

	"github.com/rs/xid"

	"auto_crm/internal/domain"
	"auto_crm/pkg/errcodes"
)

// DealID — непрозрачный идентификатор сделки (xid: сортируется по времени создания).
type DealID string

func NewDealID() DealID {
	return DealID(xid.New().String())
}

func ParseDealID(raw string) (DealID, error) {
	if _, err := xid.FromString(raw); err != nil {
		return "", domain.WrapError(err, errcodes.InvalidDealID, fmt.Sprintf("invalid deal id %q", raw))
	}

	return DealID(raw), nil
}

func (id DealID) String() string {
	return string(id)
}
