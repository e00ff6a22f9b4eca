package main

import (
	"log"
	"os"
	"runtime"
	"runtime/debug"

	"vulkan_mesh_demo/config"
	"vulkan_mesh_demo/renderer"
)

func init() {
	// SDL and the Vulkan surface have to stay on the main thread
	runtime.LockOSThread()
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
	log.Println("Starting mesh demo")
	log.Printf("Using GoLang: [%s]", runtime.Version())
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Fatal: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Printf("%+v", err)
		os.Exit(1)
	}
	log.Printf("Config: mesh '%s', texture '%s', %dx%d, validation %v", cfg.Mesh, cfg.Texture, cfg.Width, cfg.Height, cfg.Validation)

	core := renderer.NewRenderCore(cfg)
	err = core.Run()
	core.Destroy()
	if err != nil {
		log.Printf("%+v", err)
		os.Exit(1)
	}
}
