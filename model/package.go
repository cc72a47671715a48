package model

type Package struct {
	ID          int64   `json:"id"`
	PackageName string  `json:"package_name"`
	DataValueGB float64 `json:"data_value_gb"`
	PriceGHS    float64 `json:"price_ghs"`
	IsEnabled   bool    `json:"is_enabled"`
}

type Settings struct {
	WhatsAppLink string `json:"whatsapp_link"`
}
