package auth

import "github.com/nurpe/contracts-ledger/internal/model"

// CanView reports whether the caller is a party to the contract. Callers must
// answer a false result exactly like a missing contract.
func CanView(contract *model.Contract, callerID uint) bool {
	if contract == nil {
		return false
	}
	return contract.HasParty(callerID)
}

// CanPayFor reports whether the caller may pay jobs of the contract; only the
// client can.
func CanPayFor(contract *model.Contract, callerID uint) bool {
	if contract == nil {
		return false
	}
	return contract.ClientID == callerID
}
