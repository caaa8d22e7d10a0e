// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keychain.
//
// go-keychain is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/evse-security/certstore/internal/rest"
)

// OutputFormat defines the output format type.
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// Printer handles formatted output for the certificate store CLI.
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer.
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{format: OutputFormat(format), writer: writer}
}

// PrintSuccess prints a success message.
func (p *Printer) PrintSuccess(message string) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(map[string]interface{}{"status": "success", "message": message})
	}
	fmt.Fprintln(p.writer, message)
	return nil
}

// PrintError prints an error message.
func (p *Printer) PrintError(err error) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(map[string]interface{}{"status": "error", "error": err.Error()})
	}
	fmt.Fprintf(p.writer, "Error: %v\n", err)
	return nil
}

// PrintInstallResult prints the outcome of installing a CA or leaf certificate.
func (p *Printer) PrintInstallResult(resp *rest.InstallCertificateResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	fmt.Fprintf(p.writer, "Result: %s\n", resp.Result)
	return nil
}

// PrintDeleteResult prints the outcome of deleting a certificate.
func (p *Printer) PrintDeleteResult(resp *rest.DeleteCertificateResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	fmt.Fprintf(p.writer, "Result: %s\n", resp.Result)
	if resp.CAType != "" {
		fmt.Fprintf(p.writer, "CA type: %s\n", resp.CAType)
	}
	return nil
}

// PrintCertificatesInfo prints the set of installed trust anchors and
// their descendant hashes.
func (p *Printer) PrintCertificatesInfo(resp *rest.CertificatesInfoResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	if len(resp.Chains) == 0 {
		fmt.Fprintln(p.writer, "No certificates installed")
		return nil
	}
	for _, chain := range resp.Chains {
		fmt.Fprintf(p.writer, "%s root: %s\n", chain.CertificateType, hashSummary(chain.Hash))
		for _, child := range chain.ChildHashes {
			fmt.Fprintf(p.writer, "  child: %s\n", hashSummary(child))
		}
	}
	return nil
}

// PrintLeafInfo prints the status and paths of a managed leaf identity.
func (p *Printer) PrintLeafInfo(resp *rest.LeafCertificateInfoResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	fmt.Fprintf(p.writer, "Status:           %s\n", resp.Status)
	if resp.Type != "" {
		fmt.Fprintf(p.writer, "Type:             %s\n", resp.Type)
		fmt.Fprintf(p.writer, "Certificate path: %s\n", resp.CertificatePath)
		fmt.Fprintf(p.writer, "Private key path: %s\n", resp.PrivateKeyPath)
		if resp.ChainPath != "" {
			fmt.Fprintf(p.writer, "Chain path:       %s\n", resp.ChainPath)
		}
		for _, ref := range resp.OCSP {
			fmt.Fprintf(p.writer, "OCSP cache:       %s -> %s\n", hashSummary(ref.Hash), ref.DERPath)
		}
	}
	return nil
}

// PrintCSRResult prints the outcome of a CSR generation request.
func (p *Printer) PrintCSRResult(resp *rest.GenerateCSRResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	fmt.Fprintf(p.writer, "Result: %s\n", resp.Result)
	if resp.CSRPEM != "" {
		fmt.Fprintln(p.writer, resp.CSRPEM)
	}
	return nil
}

// PrintOCSPRequestData prints the hash/responder-URL pairs a caller needs
// to perform OCSP lookups itself.
func (p *Printer) PrintOCSPRequestData(resp *rest.OCSPRequestDataResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	if len(resp.Items) == 0 {
		fmt.Fprintln(p.writer, "No OCSP request data available")
		return nil
	}
	for _, item := range resp.Items {
		fmt.Fprintf(p.writer, "%s -> %s\n", hashSummary(item.Hash), item.ResponderURL)
	}
	return nil
}

// PrintOCSPCachePath prints the cached OCSP response path for a hash.
func (p *Printer) PrintOCSPCachePath(resp *rest.RetrieveOCSPCacheResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	fmt.Fprintln(p.writer, resp.Path)
	return nil
}

// PrintVerifyResult prints the outcome of a chain verification request.
func (p *Printer) PrintVerifyResult(resp *rest.VerifyCertificateResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	fmt.Fprintf(p.writer, "Result: %s\n", resp.Result)
	return nil
}

// PrintLinksResult prints whether the V2G leaf filesystem symlinks were updated.
func (p *Printer) PrintLinksResult(resp *rest.UpdateCertificateLinksResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	if resp.Updated {
		fmt.Fprintln(p.writer, "Symlinks updated")
	} else {
		fmt.Fprintln(p.writer, "Symlinks already up to date")
	}
	return nil
}

// PrintExpiry prints the number of days until a leaf identity's
// latest-expiring certificate expires.
func (p *Printer) PrintExpiry(resp *rest.LeafExpiryResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	fmt.Fprintf(p.writer, "%d days\n", resp.Days)
	return nil
}

// PrintCAInstalled prints whether a trust anchor type currently has an
// installed, valid root.
func (p *Printer) PrintCAInstalled(resp *rest.CAInstalledResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	fmt.Fprintf(p.writer, "Installed: %t\n", resp.Installed)
	return nil
}

// PrintCertificateCount prints the number of installed certificates a count
// request matched.
func (p *Printer) PrintCertificateCount(resp *rest.CertificateCountResponse) error {
	if p.format == OutputFormatJSON {
		return p.printJSON(resp)
	}
	fmt.Fprintf(p.writer, "Count: %d\n", resp.Count)
	return nil
}

func hashSummary(h rest.HashDTO) string {
	serial := h.SerialNumber
	if len(serial) > 16 {
		serial = serial[:16] + "..."
	}
	return strings.ToLower(h.Algorithm) + ":" + serial
}

func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
