package model

type Settings struct {
	Name             string `json:"name" db:"name" yaml:"name"`
	LogoURL          string `json:"logoUrl,omitempty" db:"logo_url" yaml:"logoUrl"`
	Currency         string `json:"currency" db:"currency" yaml:"currency"`
	InstapayUsername string `json:"instapayUsername" db:"instapay_username" yaml:"instapayUsername"`
	TaxID            string `json:"taxId" db:"tax_id" yaml:"taxId"`
	CommercialReg    string `json:"commercialReg" db:"commercial_reg" yaml:"commercialReg"`
	IsActive         bool   `json:"isActive" db:"is_active" yaml:"isActive"`
	ThemeColor       string `json:"themeColor" db:"theme_color" yaml:"themeColor"`
}

// DefaultSettings are returned before anything was stored.
func DefaultSettings() Settings {
	return Settings{
		Name:       "Hazel Bites",
		Currency:   "EGP",
		IsActive:   true,
		ThemeColor: "#F97316",
	}
}

type SettingsPatch struct {
	Name             *string `json:"name"`
	LogoURL          *string `json:"logoUrl"`
	Currency         *string `json:"currency"`
	InstapayUsername *string `json:"instapayUsername"`
	TaxID            *string `json:"taxId"`
	CommercialReg    *string `json:"commercialReg"`
	IsActive         *bool   `json:"isActive"`
	ThemeColor       *string `json:"themeColor"`
}

func (p SettingsPatch) Apply(s *Settings) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.LogoURL != nil {
		s.LogoURL = *p.LogoURL
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.InstapayUsername != nil {
		s.InstapayUsername = *p.InstapayUsername
	}
	if p.TaxID != nil {
		s.TaxID = *p.TaxID
	}
	if p.CommercialReg != nil {
		s.CommercialReg = *p.CommercialReg
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	if p.ThemeColor != nil {
		s.ThemeColor = *p.ThemeColor
	}
}
