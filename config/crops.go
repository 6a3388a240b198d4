package config

// Crops feeds the crop autocomplete
var Crops = []string{
	// Fruits
	"Apple", "Banana", "Orange", "Mango", "Grapes", "Pomegranate", "Papaya", "Guava",
	"Pineapple", "Watermelon", "Muskmelon", "Sweet Orange", "Mosambi", "Lemon", "Lime",
	"Coconut", "Dates", "Fig", "Custard Apple", "Dragon Fruit",
	// Cereals
	"Rice", "Wheat", "Maize", "Barley", "Bajra", "Jowar", "Ragi", "Oats", "Quinoa", "Millets",
	// Vegetables
	"Onion", "Potato", "Tomato", "Brinjal", "Okra", "Cabbage", "Cauliflower", "Carrot",
	"Radish", "Beetroot", "Spinach", "Fenugreek", "Coriander", "Mint", "Curry Leaves",
	"Green Chilli", "Red Chilli", "Capsicum", "Cucumber", "Bottle Gourd", "Ridge Gourd",
	"Bitter Gourd", "Snake Gourd", "Pumpkin", "Sweet Potato", "Yam", "Ginger", "Garlic",
	"Turmeric", "Drumstick",
	// Cash crops and oilseeds
	"Cotton", "Sugarcane", "Groundnut", "Sunflower", "Mustard", "Sesame", "Castor", "Soybean",
	// Pulses
	"Arhar", "Moong", "Urad", "Chana", "Masoor", "Rajma", "Black Gram", "Green Gram",
	"Field Pea", "Cowpea", "Horse Gram", "Lentil",
}
