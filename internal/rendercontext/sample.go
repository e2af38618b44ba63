package rendercontext

// Sample is the context used to preview a template before it is bound to a
// real contract.
func Sample() *Context {
	return &Context{
		Client: Client{
			FullName:  "Sophie Martin",
			FirstName: "Sophie",
			LastName:  "Martin",
			Email:     "sophie.martin@example.fr",
			Phone:     "06 12 34 56 78",
			Address:   "12 rue des Lilas",
			City:      "Lyon",
			ZipCode:   "69003",
		},
		Org: Organization{
			Name:            "Atelier Blanc",
			Address:         "5 place Bellecour",
			City:            "Lyon",
			ZipCode:         "69002",
			Phone:           "04 78 00 00 00",
			Email:           "contact@atelier-blanc.fr",
			Siret:           "123 456 789 00012",
			ManagerFullName: "Claire Durand",
			ManagerInitials: "CD",
		},
		Contract: Contract{
			Number:       "CTR-2025-0042",
			Type:         "Location",
			Status:       "pending",
			TotalTTC:     1234.5,
			TotalHT:      1028.75,
			TotalDeposit: 400,
			StartDate:    "2025-06-14T10:00:00Z",
			EndDate:      "2025-06-16T18:00:00Z",
			CreatedAt:    "2025-05-02T09:30:00Z",
			Notes:        "Retouches à prévoir sur l'ourlet.",
			Package: &Package{
				Name:       "Forfait Mariage",
				NumDresses: 2,
				PriceHT:    750,
				PriceTTC:   900,
			},
		},
		Dresses: []Dress{
			{ID: "d1", Name: "Robe Aurore", Reference: "AUR-01", Size: "38", Color: "Ivoire", PricePerDay: 150, Quantity: 1, Days: 3, Subtotal: 450},
			{ID: "d2", Name: "Robe Céleste", Reference: "CEL-07", Size: "40", Color: "Champagne", PricePerDay: 120, Quantity: 1, Days: 3, Subtotal: 360},
		},
		Addons: []Addon{
			{ID: "a1", Name: "Voile long", Description: "Voile en tulle brodé", Price: 45, Quantity: 1, Subtotal: 45},
			{ID: "a2", Name: "Retouches", Price: 29.5, Quantity: 1, Subtotal: 29.5},
		},
		Packages: []PackageLine{
			{ID: "p1", Name: "Forfait Mariage", Description: "Deux robes et accessoires", Price: 900, Subtotal: 900},
		},
	}
}
