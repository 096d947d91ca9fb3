package seed

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_inventory/internal/models"
)

type item struct {
	Name        string
	Description string
	Category    string
	Price       string
	Stock       int
	Threshold   int
}

var catalog = []item{
	// glassware
	{"Beaker 250ml", "Borosilicate glass beaker, 250ml capacity", models.CategoryGlassware, "12.99", 50, 10},
	{"Beaker 500ml", "Borosilicate glass beaker, 500ml capacity", models.CategoryGlassware, "15.99", 45, 10},
	{"Beaker 1000ml", "Borosilicate glass beaker, 1000ml capacity", models.CategoryGlassware, "19.99", 30, 8},
	{"Erlenmeyer Flask 250ml", "Conical flask for mixing and heating", models.CategoryGlassware, "14.50", 40, 10},
	{"Erlenmeyer Flask 500ml", "Conical flask, 500ml capacity", models.CategoryGlassware, "17.50", 35, 8},
	{"Test Tube 15ml", "Borosilicate test tube, pack of 10", models.CategoryGlassware, "8.99", 100, 20},
	{"Graduated Cylinder 100ml", "Precision measuring cylinder", models.CategoryGlassware, "22.00", 25, 5},
	{"Volumetric Flask 250ml", "Class A volumetric flask", models.CategoryGlassware, "28.00", 20, 5},
	{"Pipette 10ml", "Graduated glass pipette", models.CategoryGlassware, "6.50", 60, 15},
	{"Pipette 25ml", "Graduated glass pipette", models.CategoryGlassware, "7.50", 55, 15},
	// chemicals
	{"Ethanol 95%", "Laboratory grade ethanol, 1L bottle", models.CategoryChemicals, "24.99", 30, 10},
	{"Sodium Chloride", "ACS grade NaCl, 500g", models.CategoryChemicals, "18.50", 40, 10},
	{"Hydrochloric Acid 1M", "1M HCl solution, 500ml", models.CategoryChemicals, "22.00", 25, 8},
	{"Sodium Hydroxide", "NaOH pellets, 500g", models.CategoryChemicals, "19.99", 35, 10},
	{"Sulfuric Acid 1M", "1M H2SO4 solution, 500ml", models.CategoryChemicals, "25.00", 20, 5},
	{"Acetone", "ACS grade acetone, 1L", models.CategoryChemicals, "21.50", 28, 8},
	{"Methanol", "HPLC grade methanol, 1L", models.CategoryChemicals, "32.00", 22, 6},
	{"Distilled Water", "Laboratory grade, 5L container", models.CategoryChemicals, "8.99", 50, 15},
	{"Phenolphthalein Indicator", "1% solution, 100ml", models.CategoryChemicals, "12.00", 30, 10},
	{"Litmus Paper", "pH indicator strips, pack of 100", models.CategoryChemicals, "9.99", 45, 15},
	// equipment
	{"Bunsen Burner", "Standard laboratory burner with adjustable flame", models.CategoryEquipment, "45.00", 15, 3},
	{"Hot Plate", "Electric hot plate with temperature control", models.CategoryEquipment, "89.00", 10, 2},
	{"Magnetic Stirrer", "Magnetic stirrer with hot plate", models.CategoryEquipment, "125.00", 8, 2},
	{"Analytical Balance", "Precision balance, 0.0001g accuracy", models.CategoryEquipment, "450.00", 5, 1},
	{"pH Meter", "Digital pH meter with probe", models.CategoryEquipment, "85.00", 12, 3},
	{"Centrifuge", "Benchtop centrifuge, 6000 RPM", models.CategoryEquipment, "320.00", 4, 1},
	{"Microscope", "Compound microscope, 40x-1000x", models.CategoryEquipment, "275.00", 6, 2},
	{"Thermometer Digital", "Digital thermometer, -50 to 300C", models.CategoryEquipment, "35.00", 20, 5},
	{"Stopwatch", "Digital stopwatch with lap timer", models.CategoryEquipment, "18.00", 25, 5},
	{"Tongs", "Crucible tongs, stainless steel", models.CategoryEquipment, "12.00", 30, 8},
	// consumables
	{"Petri Dishes", "Sterile plastic petri dishes, pack of 20", models.CategoryConsumables, "15.99", 80, 20},
	{"Filter Paper", "Qualitative filter paper, pack of 100", models.CategoryConsumables, "12.50", 60, 15},
	{"Parafilm", "Sealing film, 4 inch x 125 ft roll", models.CategoryConsumables, "28.00", 25, 5},
	{"Microcentrifuge Tubes", "1.5ml tubes, pack of 500", models.CategoryConsumables, "22.00", 40, 10},
	{"Pipette Tips 200ul", "Disposable tips, pack of 1000", models.CategoryConsumables, "35.00", 50, 10},
	{"Pipette Tips 1000ul", "Disposable tips, pack of 1000", models.CategoryConsumables, "38.00", 45, 10},
	{"Cuvettes", "Plastic cuvettes, pack of 100", models.CategoryConsumables, "25.00", 35, 8},
	{"Weighing Paper", "Non-stick weighing paper, pack of 500", models.CategoryConsumables, "14.00", 40, 10},
	{"Aluminum Foil", "Heavy duty lab foil, 75 sq ft roll", models.CategoryConsumables, "16.00", 30, 8},
	{"Lab Tape", "Autoclave-safe labeling tape", models.CategoryConsumables, "8.50", 50, 15},
	// safety
	{"Safety Goggles", "Chemical splash goggles, ANSI approved", models.CategorySafety, "12.00", 40, 10},
	{"Lab Coat", "White cotton lab coat, medium", models.CategorySafety, "28.00", 25, 5},
	{"Lab Coat Large", "White cotton lab coat, large", models.CategorySafety, "28.00", 20, 5},
	{"Nitrile Gloves S", "Powder-free nitrile gloves, box of 100, small", models.CategorySafety, "18.00", 60, 15},
	{"Nitrile Gloves M", "Powder-free nitrile gloves, box of 100, medium", models.CategorySafety, "18.00", 80, 20},
	{"Nitrile Gloves L", "Powder-free nitrile gloves, box of 100, large", models.CategorySafety, "18.00", 70, 15},
	{"Face Shield", "Full face protection shield", models.CategorySafety, "15.00", 20, 5},
	{"First Aid Kit", "Laboratory first aid kit", models.CategorySafety, "45.00", 10, 2},
	{"Fire Extinguisher", "ABC dry chemical extinguisher", models.CategorySafety, "55.00", 8, 2},
	{"Spill Kit", "Chemical spill cleanup kit", models.CategorySafety, "65.00", 6, 2},
}

// Apply upserts the laboratory catalog by product name.
func Apply(db *gorm.DB) (created, updated int, err error) {
	for _, it := range catalog {
		price, perr := decimal.NewFromString(it.Price)
		if perr != nil {
			return created, updated, perr
		}

		var existing models.Product
		ferr := db.Where("name = ?", it.Name).First(&existing).Error
		switch {
		case errors.Is(ferr, gorm.ErrRecordNotFound):
			p := models.Product{
				Name:              it.Name,
				Description:       it.Description,
				Category:          it.Category,
				Price:             price,
				StockQuantity:     it.Stock,
				LowStockThreshold: it.Threshold,
			}
			if cerr := db.Create(&p).Error; cerr != nil {
				return created, updated, cerr
			}
			created++
		case ferr != nil:
			return created, updated, ferr
		default:
			existing.Description = it.Description
			existing.Category = it.Category
			existing.Price = price
			existing.StockQuantity = it.Stock
			existing.LowStockThreshold = it.Threshold
			if serr := db.Save(&existing).Error; serr != nil {
				return created, updated, serr
			}
			updated++
		}
	}
	return created, updated, nil
}
