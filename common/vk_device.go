package common

import (
	"log"

	vk "github.com/goki/vulkan"
)

var DEVICE_EXTENSIONS = []string{
	"VK_KHR_swapchain",
}

// Device represents the interfacing objects between the SDL window, the Hardware running Vulkan
// and the rest of the rendering engine. Its main purpose is to encapsulate the corresponding objects
// to make the initialization and teardown of a given application neater.
type Device struct {
	PD            vk.PhysicalDevice
	PdProps       vk.PhysicalDeviceProperties
	PdMemoryProps vk.PhysicalDeviceMemoryProperties
	QFamilies     QueueFamilyIndices

	D         vk.Device
	GraphicsQ vk.Queue
	PresentQ  vk.Queue

	// Sync hands out semaphores and fences for frame submission
	Sync *SyncPool
}

func NewDevice(w *Window) *Device {
	dc := &Device{}
	dc.selectPhysicalDevice(w.Inst, w.Surf)
	dc.createLogicalDevice(w.Validation)
	dc.Sync = NewSyncPool(dc.D)
	return dc
}

// Destroy all objects created by itself. It does not destroy the Window provided for instantiation.
func (dc *Device) Destroy() {
	dc.Sync.Destroy()
	vk.DestroyDevice(dc.D, nil)
}

func (dc *Device) selectPhysicalDevice(in vk.Instance, su vk.Surface) {
	availableDevices := ReadPhysicalDevices(in)
	var pd vk.PhysicalDevice
	for i := range availableDevices {
		if isDeviceSuitable(availableDevices[i], su) {
			pd = availableDevices[i]
			break
		}
	}
	if pd == nil {
		log.Panicf("No suitable physical device (GPU) found")
	}
	dc.PD = pd

	// Also set related member variables for dc.PD as they are needed later
	qf, err := findQueueFamilies(dc.PD, su)
	if err != nil {
		log.Panicf("Failed to read queue families from selected device due to: %s", err)
	}
	dc.QFamilies = *qf
	dc.PdProps = ReadPhysicalDeviceProperties(dc.PD)
	dc.PdProps.Limits.Deref()
	dc.PdMemoryProps = ReadDeviceMemoryProperties(dc.PD)
	log.Printf("Using device: %s (%s)", vk.ToString(dc.PdProps.DeviceName[:]), toStringDeviceType(dc.PdProps.DeviceType))
}

func isDeviceSuitable(pd vk.PhysicalDevice, su vk.Surface) bool {
	pdProps := ReadPhysicalDeviceProperties(pd)
	pdFeatures := ReadPhysicalDeviceFeatures(pd)
	pdQueueFams := ReadQueueFamilies(pd)

	log.Printf("Physical device\n%s", ToStringPhysicalDeviceTable(pdProps, pdQueueFams))

	if _, err := findQueueFamilies(pd, su); err != nil {
		log.Printf("Failed to get required queue families: %s", err)
		return false
	}
	if pdFeatures.SamplerAnisotropy != vk.True {
		log.Printf("Device lacks sampler anisotropy")
		return false
	}
	if !checkDeviceExtensionSupport(pd, DEVICE_EXTENSIONS) {
		return false
	}
	return checkSwapChainAdequacy(pd, su)
}

func (dc *Device) createLogicalDevice(validation bool) {
	queueInfos := dc.QFamilies.toQueueCreateInfos()
	deviceFeatures := vk.PhysicalDeviceFeatures{
		SamplerAnisotropy: vk.True,
	}
	deviceCreateInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(DEVICE_EXTENSIONS)),
		PpEnabledExtensionNames: TerminatedStrs(DEVICE_EXTENSIONS),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
	}
	if validation {
		deviceCreateInfo.EnabledLayerCount = uint32(len(VALIDATION_LAYERS))
		deviceCreateInfo.PpEnabledLayerNames = TerminatedStrs(VALIDATION_LAYERS)
	}

	var err error
	dc.D, err = VkCreateDevice(dc.PD, deviceCreateInfo, nil)
	if err != nil {
		log.Panicf("Failed create logical device due to: %s", err)
	}
	dc.GraphicsQ, err = VkGetDeviceQueue(dc.D, dc.QFamilies.GraphicsFamily, 0)
	if err != nil {
		log.Panicf("Failed to get 'graphics' device queue: %s", err)
	}
	dc.PresentQ, err = VkGetDeviceQueue(dc.D, dc.QFamilies.PresentFamily, 0)
	if err != nil {
		log.Panicf("Failed to get 'present' device queue: %s", err)
	}
}

// FindSupportedFormat returns the first candidate supporting features for the given tiling.
func (dc *Device) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, bool) {
	for _, format := range candidates {
		fProps := ReadFormatProperties(dc.PD, format)
		if tiling == vk.ImageTilingLinear && (fProps.LinearTilingFeatures&features) == features {
			return format, true
		} else if tiling == vk.ImageTilingOptimal && (fProps.OptimalTilingFeatures&features) == features {
			return format, true
		}
	}
	return vk.FormatUndefined, false
}

func checkDeviceExtensionSupport(pd vk.PhysicalDevice, requiredDeviceExt []string) bool {
	supportedExtNames := ReadDeviceExtensionPropertyNames(pd)
	log.Printf("Required device extensions: %v", requiredDeviceExt)
	log.Printf("Available device extensions (%d) [...]", len(supportedExtNames))
	return AllOfAinB(requiredDeviceExt, supportedExtNames)
}

func checkSwapChainAdequacy(pd vk.PhysicalDevice, surface vk.Surface) bool {
	scDetails, err := ReadSwapChainSupportDetails(pd, surface)
	if err != nil {
		log.Printf("Failed to read swap chain details: %v", err)
		return false
	}
	return len(scDetails.Formats) > 0 && len(scDetails.PresentModes) > 0
}
