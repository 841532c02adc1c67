package providers

import (
	"github.com/samber/do/v2"

	"github.com/mbjewelry/appraisal-server/internal/auth"
	"github.com/mbjewelry/appraisal-server/internal/logger"
	"github.com/mbjewelry/appraisal-server/internal/pricing"
	"github.com/mbjewelry/appraisal-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideValuationService provides the pricing engine service with the
// built-in material alias table.
func ProvideValuationService(i do.Injector) (*service.ValuationService, error) {
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewValuationService(pricing.DefaultAliasTable(), log.Logger), nil
}

// ProvideCalculationService provides the calculation persistence service.
func ProvideCalculationService(i do.Injector) (*service.CalculationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	valuationService := do.MustInvoke[*service.ValuationService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCalculationService(storeHandle.Store, valuationService, log.Logger), nil
}
