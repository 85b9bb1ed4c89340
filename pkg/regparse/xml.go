package regparse

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// XML descriptions come in two dialects, told apart by the root element.
//
// A register_map document carries the shared schema as attributes:
//
//	<register_map module="spi_controller" base_address="0x1000">
//	  <registers>
//	    <register name="ctrl_reg" address="0x00" access="RW" default="0x1"/>
//	  </registers>
//	</register_map>
//
// A component document is an IP-XACT description. The first memory map
// must hold exactly one address block; element namespaces are ignored.
const (
	xmlRootRegisterMap = "register_map"
	xmlRootComponent   = "component"
)

type xmlRegisterMap struct {
	Module      string        `xml:"module,attr"`
	BaseAddress string        `xml:"base_address,attr"`
	Description string        `xml:"description,attr"`
	Registers   []xmlRegister `xml:"registers>register"`
}

type xmlRegister struct {
	Name        string `xml:"name,attr"`
	Address     string `xml:"address,attr"`
	Access      string `xml:"access,attr"`
	Width       uint   `xml:"width,attr"`
	Default     string `xml:"default,attr"`
	Description string `xml:"description,attr"`
}

type ipxactComponent struct {
	Name        string            `xml:"name"`
	Description string            `xml:"description"`
	MemoryMaps  []ipxactMemoryMap `xml:"memoryMaps>memoryMap"`
}

type ipxactMemoryMap struct {
	Name          string               `xml:"name"`
	AddressBlocks []ipxactAddressBlock `xml:"addressBlock"`
}

type ipxactAddressBlock struct {
	Name        string           `xml:"name"`
	BaseAddress string           `xml:"baseAddress"`
	Registers   []ipxactRegister `xml:"register"`
}

type ipxactRegister struct {
	Name          string `xml:"name"`
	Description   string `xml:"description"`
	AddressOffset string `xml:"addressOffset"`
	Size          uint   `xml:"size"`
	Access        string `xml:"access"`
	Reset         string `xml:"reset>value"`
}

// parseXML decodes either XML dialect into the shared raw definition.
func parseXML(data []byte) (*RawModuleDef, error) {
	root, err := xmlRoot(data)
	if err != nil {
		return nil, err
	}
	switch root {
	case xmlRootRegisterMap:
		var doc xmlRegisterMap
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.raw(), nil
	case xmlRootComponent:
		var doc ipxactComponent
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.raw()
	default:
		return nil, fmt.Errorf("unknown root element <%s>, expected <%s> or <%s>",
			root, xmlRootRegisterMap, xmlRootComponent)
	}
}

// xmlRoot returns the local name of the document element.
func xmlRoot(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", errors.New("empty XML document")
		}
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}

func (doc *xmlRegisterMap) raw() *RawModuleDef {
	def := &RawModuleDef{
		Name:        doc.Module,
		BaseAddr:    optional(doc.BaseAddress),
		Description: doc.Description,
	}
	for _, r := range doc.Registers {
		def.Registers = append(def.Registers, RawRegisterDef{
			Name:        r.Name,
			Addr:        optional(r.Address),
			Access:      r.Access,
			Width:       r.Width,
			Default:     optional(r.Default),
			Description: r.Description,
		})
	}
	return def
}

func (doc *ipxactComponent) raw() (*RawModuleDef, error) {
	if len(doc.MemoryMaps) == 0 {
		return nil, errors.New("component has no memory map")
	}
	blocks := doc.MemoryMaps[0].AddressBlocks
	switch len(blocks) {
	case 0:
		return nil, errors.New("memory map has no address block")
	case 1:
	default:
		return nil, fmt.Errorf("memory map has %d address blocks, only one is supported", len(blocks))
	}
	block := blocks[0]

	def := &RawModuleDef{
		Name:        strings.TrimSpace(doc.Name),
		BaseAddr:    optional(block.BaseAddress),
		Description: strings.TrimSpace(doc.Description),
	}
	for _, r := range block.Registers {
		def.Registers = append(def.Registers, RawRegisterDef{
			Name:        strings.TrimSpace(r.Name),
			Addr:        optional(r.AddressOffset),
			Access:      strings.TrimSpace(r.Access),
			Width:       r.Size,
			Default:     optional(r.Reset),
			Description: r.Description,
		})
	}
	return def, nil
}

// optional maps an absent or blank value to nil so that the shared
// conversion treats it as missing.
func optional(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
