package mapping

import (
	"github.com/bizledger/erp_core/internal/core/domain"
	"github.com/bizledger/erp_core/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     models.AccountType(d.AccountType),
		CurrencyCode:    d.CurrencyCode,
		ParentAccountID: nullableStr(d.ParentAccountID),
		Description:     d.Description,
		IsActive:        d.IsActive,
		IsSystem:        d.IsSystem,
		Balance:         d.Balance.Amount,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		CurrencyCode:    m.CurrencyCode,
		ParentAccountID: derefStr(m.ParentAccountID),
		Description:     m.Description,
		IsActive:        m.IsActive,
		IsSystem:        m.IsSystem,
		Balance:         domain.NewMoney(m.Balance, m.CurrencyCode),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
