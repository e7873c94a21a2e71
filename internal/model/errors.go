package model

import "errors"

// Domain validation errors surfaced by the service layer.
var (
	ErrNonexistentItemID = errors.New("item id does not exist")
	ErrInactiveItemID    = errors.New("item id is inactive")
	ErrNonexistentSkuID  = errors.New("sku id does not exist")
	ErrInactiveSkuID     = errors.New("sku id is inactive")
	ErrInvalidTrType     = errors.New("invalid transaction type")
	ErrInvalidTrQty      = errors.New("transaction qty must be a positive integer")
	ErrInsufficientQty   = errors.New("insufficient sku qty remaining")
	ErrInvalidRootSku    = errors.New("root sku must reference a sku of the same item")
	ErrDuplicateName     = errors.New("name already exists")
	ErrRowInUse          = errors.New("row is referenced by other records and cannot be deleted")
)
