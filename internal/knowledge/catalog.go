package knowledge

// BuiltinCatalog is the default troubleshooting knowledge, in display order.
var BuiltinCatalog = []CatalogEntry{
	{
		Problem:  "Laptop not turning on",
		Solution: "Check if the charger is properly connected. Try a different power outlet. If the battery is removable, remove it, hold the power button for 30 seconds, reinsert the battery, and try again.",
	},
	{
		Problem:  "Wi-fi keeps disconnecting",
		Solution: "Restart your router. Forget the network on your device and reconnect. Update your network drivers.",
	},
	{
		Problem:  "screen flickering issue",
		Solution: "Update your graphics driver. Adjust the screen refresh rate under Display Settings.",
	},
	{
		Problem:  "audio not working",
		Solution: "Check if the device is muted. Verify the correct audio output device is selected. Update or reinstall audio drivers.",
	},
	{
		Problem:  "blue screen error",
		Solution: "Note the error code. Run a memory diagnostic. Check for driver updates and Windows updates.",
	},
	{
		Problem:  "printer not responding",
		Solution: "Ensure the printer is powered on and connected. Restart the printer and computer. Reinstall the printer driver.",
	},
	{
		Problem:  "battery draining fast",
		Solution: "Check for background apps consuming power. Reduce screen brightness. Update the system and check for battery health.",
	},
	{
		Problem:  "slow computer performance",
		Solution: "Clear temporary files. Disable startup apps. Run a malware scan. Consider upgrading RAM or SSD.",
	},
	{
		Problem:  "overheating laptop",
		Solution: "Clean the air vents. Use the laptop on a hard surface. Consider a cooling pad. Update BIOS and drivers.",
	},
	{
		Problem:  "app keeps crashing",
		Solution: "Update the app. Clear app cache or reinstall it. Check for system updates.",
	},
}
