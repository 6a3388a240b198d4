package config

// Centroid is an approximate city or state centre
type Centroid struct {
	Lat float64
	Lon float64
}

// CityCentroids are used when a market has not been geocoded
var CityCentroids = map[string]Centroid{
	"mumbai":                    {Lat: 19.076, Lon: 72.8777},
	"pune":                      {Lat: 18.5204, Lon: 73.8567},
	"nagpur":                    {Lat: 21.1458, Lon: 79.0882},
	"nashik":                    {Lat: 19.9975, Lon: 73.7898},
	"aurangabad":                {Lat: 19.8762, Lon: 75.3433},
	"solapur":                   {Lat: 17.6599, Lon: 75.9064},
	"amravati":                  {Lat: 20.9374, Lon: 77.7796},
	"kolhapur":                  {Lat: 16.705, Lon: 74.2433},
	"sangli":                    {Lat: 16.8524, Lon: 74.5815},
	"ahmednagar":                {Lat: 19.0948, Lon: 74.748},
	"chattrapati sambhajinagar": {Lat: 19.8762, Lon: 75.3433},
	"delhi":                     {Lat: 28.7041, Lon: 77.1025},
	"bangalore":                 {Lat: 12.9716, Lon: 77.5946},
	"hyderabad":                 {Lat: 17.385, Lon: 78.4867},
	"chennai":                   {Lat: 13.0827, Lon: 80.2707},
	"kolkata":                   {Lat: 22.5726, Lon: 88.3639},
	"ahmedabad":                 {Lat: 23.0225, Lon: 72.5714},
	"jaipur":                    {Lat: 26.9124, Lon: 75.7873},
	"lucknow":                   {Lat: 26.8467, Lon: 80.9462},
	"kanpur":                    {Lat: 26.4499, Lon: 80.3319},
	"indore":                    {Lat: 22.7196, Lon: 75.8577},
	"bhopal":                    {Lat: 23.2599, Lon: 77.4126},
	"patna":                     {Lat: 25.5941, Lon: 85.1376},
	"gurgaon":                   {Lat: 28.4595, Lon: 77.0266},
	"guwahati":                  {Lat: 26.1445, Lon: 91.7362},
}

// StateCentroids are the last resort when no city matches
var StateCentroids = map[string]Centroid{
	"maharashtra":    {Lat: 19.7515, Lon: 75.7139},
	"uttar pradesh":  {Lat: 26.8467, Lon: 80.9462},
	"karnataka":      {Lat: 15.3173, Lon: 75.7139},
	"tamil nadu":     {Lat: 11.1271, Lon: 78.6569},
	"gujarat":        {Lat: 23.0225, Lon: 72.5714},
	"rajasthan":      {Lat: 27.0238, Lon: 74.2179},
	"madhya pradesh": {Lat: 22.9734, Lon: 78.6569},
	"west bengal":    {Lat: 22.9868, Lon: 87.855},
	"bihar":          {Lat: 25.0961, Lon: 85.3131},
	"haryana":        {Lat: 29.0588, Lon: 76.0856},
}
