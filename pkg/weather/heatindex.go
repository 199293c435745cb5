package weather

// HeatIndex computes the apparent temperature in °C from the dry-bulb
// temperature (°C) and relative humidity (%), using the Rothfusz regression.
// The regression is only defined above 80°F; below that the heat index equals
// the air temperature.
func HeatIndex(tempC, humidity float64) float64 {
	tempF := tempC*9/5 + 32
	if tempF < 80 {
		return tempC
	}

	hiF := -42.379 +
		2.04901523*tempF +
		10.14333127*humidity -
		0.22475541*tempF*humidity -
		6.83783e-3*tempF*tempF -
		5.481717e-2*humidity*humidity +
		1.22874e-3*tempF*tempF*humidity +
		8.5282e-4*tempF*humidity*humidity -
		1.99e-6*tempF*tempF*humidity*humidity

	return (hiF - 32) * 5 / 9
}
