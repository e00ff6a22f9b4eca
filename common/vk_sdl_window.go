package common

import (
	"fmt"
	"log"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"

	"vulkan_mesh_demo/frame"
)

const APP_MAJOR, APP_MINOR, APP_PATCH = 1, 0, 0
const ENGINE_NAME = "No Engine"
const ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH = 1, 0, 0

const SDL_MAJOR, SDL_MINOR, SDL_PATCH = int(sdl.MAJOR_VERSION), int(sdl.MINOR_VERSION), int(sdl.PATCHLEVEL)

// Vulkan spec go bindings = v1.0.7, as per: https://github.com/goki/vulkan = 1.3.239
const VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH int = 1, 3, 239

var VALIDATION_LAYERS = []string{
	"VK_LAYER_KHRONOS_validation",
}

const debugReportExtension = "VK_EXT_debug_report"

// Window encapsulates all window handling components and vulkan access objects to talk, to actual draw on screen. It
// uses SDL for window management and user input, thus simplifying the process of getting a vk.Surface to draw on.
type Window struct {
	sdlVersion string
	vkVersion  string

	Win *sdl.Window

	Inst       vk.Instance
	Surf       vk.Surface
	Validation bool
	debugCb    vk.DebugReportCallback
}

// NewWindow initializes SDL, the Vulkan loader, an instance (optionally with validation) and a surface for the new
// window. On tear down, we need to destroy the: vk.Surface, debug callback, vk.Instance and sdl.Window.
func NewWindow(title string, w int32, h int32, validation bool) *Window {
	window := &Window{
		sdlVersion: fmt.Sprintf("v%d.%d.%d", SDL_MAJOR, SDL_MINOR, SDL_PATCH),
		vkVersion:  fmt.Sprintf("v%d.%d.%d", VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
		Validation: validation,
	}
	window.initSDLWindow(title, w, h)
	window.initVulkan()
	window.createVulkanInstance(title)
	if window.Validation {
		window.createDebugCallback()
	}
	window.createSdlVkSurface()
	log.Printf("Generated SDL/Vulkan window - SDL: %s Vulkan Spec: %s", window.sdlVersion, window.vkVersion)
	return window
}

// Destroy tears down everything NewWindow created, in reverse order.
func (w *Window) Destroy() {
	vk.DestroySurface(w.Inst, w.Surf, nil)
	if w.debugCb != nil {
		vk.DestroyDebugReportCallback(w.Inst, w.debugCb, nil)
	}
	vk.DestroyInstance(w.Inst, nil)
	if err := w.Win.Destroy(); err != nil {
		log.Printf("Failed to destroy SDL window: %v", err)
	}
	sdl.Quit()
}

// Size reports the drawable size in pixels, which may differ from the window size on high DPI displays.
func (w *Window) Size() frame.Extent {
	width, height := w.Win.VulkanGetDrawableSize()
	if width < 0 || height < 0 {
		return frame.Extent{}
	}
	return frame.Extent{Width: uint32(width), Height: uint32(height)}
}

func (w *Window) Minimized() bool {
	return w.Win.GetFlags()&sdl.WINDOW_MINIMIZED != 0
}

func (w *Window) initSDLWindow(title string, width int32, height int32) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.Panicf("Failed to initialize SDL: %v", err)
	}
	log.Println("Initialized SDL")
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		width,
		height,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_VULKAN,
	)
	if err != nil {
		log.Panicf("Failed to create SDL window for use with Vulkan: %v", err)
	}
	log.Printf("Created SDL window for use with Vulkan. Title: \"%s\", Width: %d, Height: %d", title, width, height)
	w.Win = win
}

func (w *Window) initVulkan() {
	// Find and load Vulkan addresses to be able to call driver level functions via provided mechanism
	vk.SetGetInstanceProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	err := vk.Init()
	if err != nil {
		log.Panicf("Failed to initialize Vulkan API: %v", err)
	}
}

func (w *Window) createVulkanInstance(title string) {
	requiredExtensions := w.Win.VulkanGetInstanceExtensions()
	if w.Validation {
		requiredExtensions = append(requiredExtensions, debugReportExtension)
	}
	checkInstanceExtensionSupport(requiredExtensions)

	if w.Validation {
		log.Printf("Validation enabled, checking layer support")
		checkValidationLayerSupport(VALIDATION_LAYERS)
	}
	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PNext:              nil,
		PApplicationName:   TerminatedStr(title),
		ApplicationVersion: vk.MakeVersion(APP_MAJOR, APP_MINOR, APP_PATCH),
		PEngineName:        TerminatedStr(ENGINE_NAME),
		EngineVersion:      vk.MakeVersion(ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH),
		ApiVersion:         vk.MakeVersion(1, 0, 0),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		PApplicationInfo:        applicationInfo,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: TerminatedStrs(requiredExtensions),
	}
	if w.Validation {
		createInfo.EnabledLayerCount = uint32(len(VALIDATION_LAYERS))
		createInfo.PpEnabledLayerNames = TerminatedStrs(VALIDATION_LAYERS)
	}
	ins, err := VkCreateInstance(createInfo, nil)
	if err != nil {
		log.Panicf("Failed to create vk instance, due to: %v", err)
	}
	w.Inst = ins
}

func (w *Window) createDebugCallback() {
	createInfo := &vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit |
			vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
		PfnCallback: debugCallback,
	}
	cb, err := VkCreateDebugReportCallback(w.Inst, createInfo, nil)
	if err != nil {
		log.Panicf("Failed to set up debug callback: %v", err)
	}
	w.debugCb = cb
}

func debugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64,
	messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
	log.Printf("validation layer: (severity: %s) %s", severity(flags), message)
	return vk.False
}

func severity(flags vk.DebugReportFlags) string {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return "error"
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return "warning"
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return "information"
	default:
		return "debug"
	}
}

func checkInstanceExtensionSupport(requiredInstanceExt []string) {
	supportedExtNames := ReadInstanceExtensionPropertyNames()
	log.Printf("Required instance extensions: %v", requiredInstanceExt)
	log.Printf("Available extensions (%d): %v", len(supportedExtNames), supportedExtNames)

	if !AllOfAinB(requiredInstanceExt, supportedExtNames) {
		log.Panicf("At least one required instance extension is not supported")
	}
	log.Println("Success - All required instance extensions are supported")
}

func checkValidationLayerSupport(requiredLayers []string) {
	supportedLayerNames := ReadInstanceLayerPropertyNames()
	log.Printf("Desired validation layers: %v", requiredLayers)
	log.Printf("Supported layers (%d): %v", len(supportedLayerNames), supportedLayerNames)

	if !AllOfAinB(requiredLayers, supportedLayerNames) {
		log.Panicf("At least one desired validation layer is not supported")
	}
	log.Println("Success - All desired validation layers are supported")
}

func (w *Window) createSdlVkSurface() {
	surf, err := SdlCreateVkSurface(w.Win, w.Inst)
	if err != nil {
		log.Panicf("Failed to create SDL window's Vulkan-surface, due to: %v", err)
	}
	w.Surf = surf
}
