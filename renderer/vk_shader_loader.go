package renderer

import (
	"log"
	"os"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	com "vulkan_mesh_demo/common"
)

// LoadShader reads a '.spv' file and wraps it into a shader module plus the vk.PipelineShaderStageCreateInfo
// required to bind it to a pipeline for the given stage.
func LoadShader(d vk.Device, path string, stage vk.ShaderStageFlagBits) (vk.ShaderModule, vk.PipelineShaderStageCreateInfo, error) {
	mod, err := readShaderCode(d, path)
	if err != nil {
		return nil, vk.PipelineShaderStageCreateInfo{}, err
	}
	stageInfo := vk.PipelineShaderStageCreateInfo{
		SType:               vk.StructureTypePipelineShaderStageCreateInfo,
		PNext:               nil,
		Flags:               0,
		Stage:               stage,
		Module:              mod,
		PName:               com.TerminatedStr("main"), // entrypoint -> function name in the shader
		PSpecializationInfo: nil,
	}
	return mod, stageInfo, nil
}

// DeleteShaderMod discards a shader module. As vk.ShaderModule is only meant as a container to move the shader code
// onto device memory, it can be destroyed right after creating a shader stage when binding to a rendering pipeline.
func DeleteShaderMod(d vk.Device, mod vk.ShaderModule) {
	vk.DestroyShaderModule(d, mod, nil)
}

func readShaderCode(d vk.Device, shaderFile string) (vk.ShaderModule, error) {
	shaderCodeB, err := os.ReadFile(shaderFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read shader file '%s'", shaderFile)
	}
	if len(shaderCodeB) == 0 || len(shaderCodeB)%4 != 0 {
		return nil, errors.Errorf("shader file '%s' is not SPIR-V: size %d Byte", shaderFile, len(shaderCodeB))
	}
	log.Printf("Read shader file (%s) of size: %dByte", shaderFile, len(shaderCodeB))

	createInfo := &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		PNext:    nil,
		Flags:    0,
		CodeSize: uint64(len(shaderCodeB)),
		PCode:    com.AsUint32Arr(shaderCodeB),
	}
	module, err := com.VkCreateShaderModule(d, createInfo, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create shader module '%s'", shaderFile)
	}
	return module, nil
}
