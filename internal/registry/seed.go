package registry

import "github.com/itam-dev/itam-store/pkg/schema"

// SeedAssets returns the fixed starter inventory used when no asset blob
// exists yet (or when the stored one cannot be parsed). The history log is
// deliberately not seeded; audit records only ever come from real mutations.
func SeedAssets() []schema.Asset {
	return []schema.Asset{
		{
			ID:              "1",
			Name:            "Dell Latitude 5420",
			AccessionNumber: "ACC-LPT-001",
			ModelType:       "Latitude 5420",
			SerialNumber:    "DLL5420-2023-001",
			AssignedUser:    "Ahmad Rizki",
			Department:      "IT Development",
			DateReceived:    "2023-01-15",
			Status:          schema.StatusActive,
			Category:        schema.CategoryLaptop,
			Notes:           "Laptop untuk development team",
		},
		{
			ID:              "2",
			Name:            "HP LaserJet Pro",
			AccessionNumber: "ACC-PRT-001",
			ModelType:       "LaserJet Pro M404n",
			SerialNumber:    "HP404-2023-001",
			AssignedUser:    "Departemen HR",
			Department:      "Human Resources",
			DateReceived:    "2023-02-20",
			Status:          schema.StatusActive,
			Category:        schema.CategoryPrinter,
			Notes:           "Printer untuk dokumen HR",
		},
		{
			ID:              "3",
			Name:            "LG UltraWide 34\"",
			AccessionNumber: "ACC-MON-001",
			ModelType:       "34WN80C-B",
			SerialNumber:    "LG34-2023-001",
			AssignedUser:    "Budi Santoso",
			Department:      "Design",
			DateReceived:    "2023-03-10",
			Status:          schema.StatusActive,
			Category:        schema.CategoryMonitor,
			Notes:           "Monitor untuk graphic designer",
		},
		{
			ID:              "4",
			Name:            "Lenovo ThinkCentre",
			AccessionNumber: "ACC-PC-001",
			ModelType:       "ThinkCentre M920",
			SerialNumber:    "LNV920-2023-001",
			AssignedUser:    "Siti Nurhaliza",
			Department:      "Finance",
			DateReceived:    "2023-04-05",
			Status:          schema.StatusBroken,
			Category:        schema.CategoryDesktop,
			Notes:           "Perlu penggantian hard drive",
		},
		{
			ID:              "5",
			Name:            "Cisco Catalyst 2960",
			AccessionNumber: "ACC-NET-001",
			ModelType:       "Catalyst 2960-X",
			SerialNumber:    "CSC2960-2023-001",
			AssignedUser:    "Network Team",
			Department:      "IT Infrastructure",
			DateReceived:    "2023-05-12",
			Status:          schema.StatusActive,
			Category:        schema.CategoryNetwork,
			Notes:           "Switch utama lantai 3",
		},
		{
			ID:              "6",
			Name:            "MacBook Pro 14\"",
			AccessionNumber: "ACC-LPT-002",
			ModelType:       "MacBook Pro M2",
			SerialNumber:    "MBLM2-2023-001",
			AssignedUser:    "Diana Putri",
			Department:      "Marketing",
			DateReceived:    "2023-06-18",
			Status:          schema.StatusActive,
			Category:        schema.CategoryLaptop,
			Notes:           "Laptop untuk content creator",
		},
	}
}
