package reconcile

// TxnType discriminates deposit and expense records. Deposits and expenses
// share one record shape; the tag is the only thing telling a shipping
// charge from a regular cost of goods.
type TxnType string

const (
	TxnShipping   TxnType = "shipping"
	TxnShippingIn TxnType = "shipping_in"
	TxnFinance    TxnType = "finance"
	TxnRegular    TxnType = "regular"
)

// ParseTxnType normalizes a raw tag. Anything unrecognized is a regular
// (non-shipping, non-finance) transaction.
func ParseTxnType(raw string) TxnType {
	switch TxnType(raw) {
	case TxnShipping, TxnShippingIn, TxnFinance:
		return TxnType(raw)
	default:
		return TxnRegular
	}
}

// Tagged is any record carrying a transaction type tag.
type Tagged interface {
	Tag() TxnType
}

// Partition splits items into (matching, rest) by tag. The split is stable:
// both outputs preserve the input's relative order, and their lengths always
// sum to len(items).
func Partition[T Tagged](items []T, tag TxnType) (matching, rest []T) {
	for _, item := range items {
		if item.Tag() == tag {
			matching = append(matching, item)
		} else {
			rest = append(rest, item)
		}
	}
	return matching, rest
}
