package renderer

import (
	"log"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"

	com "vulkan_mesh_demo/common"
	"vulkan_mesh_demo/frame"
)

// setsPerPool is the number of descriptor sets a single descriptor pool is sized for. Further pools are added once
// all of them are handed out.
const setsPerPool = 4

// frameSlot is the uniform data of one frame in flight: a persistently mapped uniform buffer and the descriptor set
// that binds it together with the texture.
type frameSlot struct {
	ubo    *com.Buffer
	mapped unsafe.Pointer
	set    vk.DescriptorSet
}

func (s *frameSlot) write(ubo frame.UniformBufferObject) {
	vk.Memcopy(s.mapped, ubo.Bytes())
}

// DescriptorProvisioner hands out frame slots. A slot is returned once the frame using it has finished on the
// device, so the number of slots is bounded by the number of frames in flight.
type DescriptorProvisioner struct {
	device *com.Device

	descriptorSetLayout vk.DescriptorSetLayout
	textureView         vk.ImageView
	textureSampler      vk.Sampler

	descriptorPools []vk.DescriptorPool
	poolFill        uint32

	slots *com.FreeList[*frameSlot]
}

func NewDescriptorProvisioner(dc *com.Device, layout vk.DescriptorSetLayout, texView vk.ImageView, sampler vk.Sampler) *DescriptorProvisioner {
	dp := &DescriptorProvisioner{
		device:              dc,
		descriptorSetLayout: layout,
		textureView:         texView,
		textureSampler:      sampler,
	}
	dp.slots = com.NewFreeList(dp.createSlot, dp.destroySlot)
	return dp
}

func (dp *DescriptorProvisioner) Get() (*frameSlot, error) {
	return dp.slots.Get()
}

func (dp *DescriptorProvisioner) Put(s *frameSlot) {
	dp.slots.Put(s)
}

// Destroy frees every slot and descriptor pool. Slots still in use are leaked and reported.
func (dp *DescriptorProvisioner) Destroy() {
	if n := dp.slots.Outstanding(); n > 0 {
		log.Printf("Destroying descriptor provisioner with %d frame slots still in use", n)
	}
	dp.slots.DestroyAll()
	for _, pool := range dp.descriptorPools {
		vk.DestroyDescriptorPool(dp.device.D, pool, nil)
	}
	dp.descriptorPools = nil
}

func (dp *DescriptorProvisioner) createSlot() (*frameSlot, error) {
	uboBufSize := vk.DeviceSize(frame.SizeOfUbo)
	buf, err := com.CreateBuffer(
		dp.device,
		uboBufSize,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create uniform buffer")
	}
	mapped, err := com.VkMapMemory(dp.device.D, buf.DeviceMem, 0, uboBufSize, 0)
	if err != nil {
		buf.Destroy(dp.device)
		return nil, errors.Wrap(err, "failed to map uniform buffer")
	}
	set, err := dp.allocDescriptorSet()
	if err != nil {
		vk.UnmapMemory(dp.device.D, buf.DeviceMem)
		buf.Destroy(dp.device)
		return nil, err
	}
	dp.writeDescriptorSet(set, buf)
	log.Printf("Created frame slot %d (UBO size: %d Byte)", dp.slots.Outstanding()+1, uboBufSize)
	return &frameSlot{ubo: buf, mapped: mapped, set: set}, nil
}

// destroySlot releases the uniform buffer. The descriptor set goes away with its pool.
func (dp *DescriptorProvisioner) destroySlot(s *frameSlot) {
	vk.UnmapMemory(dp.device.D, s.ubo.DeviceMem)
	s.ubo.Destroy(dp.device)
}

// allocDescriptorSet allocates from the newest descriptor pool, adding a pool when it is exhausted.
func (dp *DescriptorProvisioner) allocDescriptorSet() (vk.DescriptorSet, error) {
	if len(dp.descriptorPools) == 0 || dp.poolFill == setsPerPool {
		if err := dp.createDescriptorPool(); err != nil {
			return nil, err
		}
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		PNext:              nil,
		DescriptorPool:     dp.descriptorPools[len(dp.descriptorPools)-1],
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{dp.descriptorSetLayout},
	}
	sets, err := com.VkAllocateDescriptorSets(dp.device.D, &allocInfo)
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate descriptor set")
	}
	dp.poolFill++
	return sets[0], nil
}

func (dp *DescriptorProvisioner) createDescriptorPool() error {
	uboPoolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: setsPerPool,
	}
	texSamplerPoolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: setsPerPool,
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PNext:         nil,
		Flags:         0,
		MaxSets:       setsPerPool,
		PoolSizeCount: 2,
		PPoolSizes:    []vk.DescriptorPoolSize{uboPoolSize, texSamplerPoolSize},
	}
	dPool, err := com.VkCreateDescriptorPool(dp.device.D, &poolInfo, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create descriptor pool")
	}
	dp.descriptorPools = append(dp.descriptorPools, dPool)
	dp.poolFill = 0
	return nil
}

func (dp *DescriptorProvisioner) writeDescriptorSet(set vk.DescriptorSet, ubo *com.Buffer) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: ubo.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(frame.SizeOfUbo),
	}
	uboDescriptorWrite := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	texSampler := vk.DescriptorImageInfo{
		Sampler:     dp.textureSampler,
		ImageView:   dp.textureView,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
	texSamplerDescriptorWrite := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      1, // <-- corresponds to 'layout(binding = 1) uniform sampler2D texSampler;'
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      []vk.DescriptorImageInfo{texSampler},
	}
	writes := []vk.WriteDescriptorSet{uboDescriptorWrite, texSamplerDescriptorWrite}
	vk.UpdateDescriptorSets(dp.device.D, uint32(len(writes)), writes, 0, nil)
}
